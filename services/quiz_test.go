package services

import (
	"errors"
	"testing"
	"time"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuiz(t *testing.T, s *QuizService, questions int, published bool) *models.Quiz {
	t.Helper()
	quiz := models.Quiz{
		ID:            uuid.NewString(),
		Title:         "Wetland Birds",
		QuestionCount: questions,
		Published:     published,
	}
	require.NoError(t, s.DB.Create(&quiz).Error)
	return &quiz
}

func TestSubmitQuiz_FirstSubmission(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	quiz := seedQuiz(t, quizzes, 10, true)

	result, err := quizzes.SubmitQuiz("user-1", quiz.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4*rewards.Weights.QuizCorrectXP, result.XPEarned)
	assert.Equal(t, int64(1), result.Progress.TotalQuizzes)

	state, err := quizzes.GetState("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.StreakDays)
	require.NotNil(t, state.LastQuizDate)
}

func TestSubmitQuiz_SameDayRepeatWorthNothing(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	quiz := seedQuiz(t, quizzes, 10, true)

	_, err := quizzes.SubmitQuiz("user-1", quiz.ID, 10)
	require.NoError(t, err)

	// not rejected — ledgered with forced-zero XP, counters untouched
	result, err := quizzes.SubmitQuiz("user-1", quiz.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.XPEarned)
	assert.Equal(t, int64(1), result.Progress.TotalQuizzes)

	state, err := quizzes.GetState("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.StreakDays)

	var entries int64
	require.NoError(t, rewards.DB.Model(&models.ActivityLedgerEntry{}).
		Where("external_user_id = ? AND action_type = ?", "user-1", models.ActionQuizCompleted).
		Count(&entries).Error)
	assert.Equal(t, int64(2), entries)
}

func TestSubmitQuiz_ConsecutiveDayExtendsStreakWithBonus(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	quiz := seedQuiz(t, quizzes, 10, true)

	yesterday := dateOnly(time.Now().AddDate(0, 0, -1))
	state := models.QuizStreakState{
		ID:             uuid.NewString(),
		ExternalUserID: "user-1",
		StreakDays:     6,
		LastQuizDate:   &yesterday,
	}
	require.NoError(t, rewards.DB.Create(&state).Error)

	result, err := quizzes.SubmitQuiz("user-1", quiz.ID, 8)
	require.NoError(t, err)

	// streak hits 7: per-answer XP plus the streak bonus
	want := 8*rewards.Weights.QuizCorrectXP + rewards.Weights.QuizStreakBonusXP
	assert.Equal(t, want, result.XPEarned)

	fresh, err := quizzes.GetState("user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.StreakDays)
}

func TestSubmitQuiz_GapRestartsStreak(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	quiz := seedQuiz(t, quizzes, 10, true)

	threeDaysAgo := dateOnly(time.Now().AddDate(0, 0, -3))
	state := models.QuizStreakState{
		ID:             uuid.NewString(),
		ExternalUserID: "user-1",
		StreakDays:     20,
		LastQuizDate:   &threeDaysAgo,
	}
	require.NoError(t, rewards.DB.Create(&state).Error)

	_, err := quizzes.SubmitQuiz("user-1", quiz.ID, 5)
	require.NoError(t, err)

	fresh, err := quizzes.GetState("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.StreakDays)
}

func TestSubmitQuiz_Validation(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	quiz := seedQuiz(t, quizzes, 5, true)

	var verr *ValidationError
	_, err := quizzes.SubmitQuiz("user-1", quiz.ID, -1)
	require.True(t, errors.As(err, &verr))

	_, err = quizzes.SubmitQuiz("user-1", quiz.ID, 6)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "correct_answers", verr.Field)
}

func TestSubmitQuiz_UnpublishedIsNotFound(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	quiz := seedQuiz(t, quizzes, 5, false)

	_, err := quizzes.SubmitQuiz("user-1", quiz.ID, 3)
	var nferr *NotFoundError
	require.True(t, errors.As(err, &nferr))
	assert.Equal(t, "quiz", nferr.Resource)
}

func TestListQuizzes_PublishedOnly(t *testing.T) {
	rewards := newTestRewards(t)
	quizzes := NewQuizService(rewards.DB, rewards)
	seedQuiz(t, quizzes, 5, true)
	seedQuiz(t, quizzes, 5, false)

	list, err := quizzes.ListQuizzes()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
