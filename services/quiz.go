package services

import (
	"time"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizService handles quiz submissions and the quiz streak — a second streak
// counter, tracked independently from the daily check-in streak.
type QuizService struct {
	DB      *gorm.DB
	Rewards *RewardService
}

func NewQuizService(db *gorm.DB, rewards *RewardService) *QuizService {
	return &QuizService{DB: db, Rewards: rewards}
}

// SubmitQuiz rewards per-correct-answer XP plus a streak bonus when the new
// streak length is a positive multiple of 7. A second submission on the same
// calendar day is not rejected — its raw XP is forced to 0 and the streak is
// left untouched (a deliberately different idempotency flavor from check-in).
func (s *QuizService) SubmitQuiz(externalUserID, quizID string, correctAnswers int) (*RewardResult, error) {
	if correctAnswers < 0 {
		return nil, &ValidationError{Field: "correct_answers", Reason: "must be non-negative"}
	}

	var result *RewardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.Where("id = ? AND published = ?", quizID, true).First(&quiz).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Resource: "quiz", ID: quizID}
			}
			return storeErr("fetch quiz", err)
		}
		if correctAnswers > quiz.QuestionCount {
			return &ValidationError{Field: "correct_answers", Reason: "exceeds question count"}
		}

		if _, err := s.Rewards.ensureProgressTx(tx, externalUserID); err != nil {
			return err
		}
		state, err := s.ensureStateTx(tx, externalUserID)
		if err != nil {
			return err
		}

		today := dateOnly(time.Now())

		if state.LastQuizDate != nil && daysBetween(*state.LastQuizDate, today) == 0 {
			// Repeat submission today: still ledgered, but worth nothing.
			r, err := s.Rewards.awardTx(tx, externalUserID, models.ActionQuizCompleted, 0,
				"Quiz repeated today: "+quiz.Title,
				map[string]interface{}{"quiz_id": quizID, "correct_answers": correctAnswers, "repeat": true})
			if err != nil {
				return err
			}
			result = r
			return nil
		}

		// Day-gap rules, analogous to the check-in streak but with no freezes:
		// consecutive day extends, anything else restarts at 1.
		if state.LastQuizDate != nil && daysBetween(*state.LastQuizDate, today) == 1 {
			state.StreakDays++
		} else {
			state.StreakDays = 1
		}

		xp := int64(correctAnswers) * s.Rewards.Weights.QuizCorrectXP
		var bonus int64
		if state.StreakDays%7 == 0 {
			bonus = s.Rewards.Weights.QuizStreakBonusXP
			xp += bonus
		}

		state.LastQuizDate = &today
		state.CumulativeXP += xp
		if err := tx.Save(state).Error; err != nil {
			return storeErr("save quiz streak state", err)
		}

		if err := tx.Model(&models.UserProgress{}).
			Where("external_user_id = ?", externalUserID).
			UpdateColumn("total_quizzes", gorm.Expr("total_quizzes + 1")).Error; err != nil {
			return storeErr("bump quiz counter", err)
		}

		r, err := s.Rewards.awardTx(tx, externalUserID, models.ActionQuizCompleted, xp,
			"Completed quiz: "+quiz.Title,
			map[string]interface{}{
				"quiz_id":         quizID,
				"correct_answers": correctAnswers,
				"quiz_streak":     state.StreakDays,
				"streak_bonus":    bonus,
			})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *QuizService) ensureStateTx(tx *gorm.DB, externalUserID string) (*models.QuizStreakState, error) {
	var state models.QuizStreakState
	err := tx.Where("external_user_id = ?", externalUserID).First(&state).Error
	if err == nil {
		return &state, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, storeErr("fetch quiz streak state", err)
	}

	state = models.QuizStreakState{ID: uuid.NewString(), ExternalUserID: externalUserID}
	if err := tx.Create(&state).Error; err != nil {
		if isDuplicate(err) {
			if err := tx.Where("external_user_id = ?", externalUserID).First(&state).Error; err != nil {
				return nil, storeErr("refetch quiz streak state", err)
			}
			return &state, nil
		}
		return nil, storeErr("create quiz streak state", err)
	}
	return &state, nil
}

// GetState returns the user's quiz streak snapshot (creating it if absent).
func (s *QuizService) GetState(externalUserID string) (*models.QuizStreakState, error) {
	return s.ensureStateTx(s.DB, externalUserID)
}

// ListQuizzes returns the published quiz catalog.
func (s *QuizService) ListQuizzes() ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := s.DB.Where("published = ?", true).Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, storeErr("fetch quizzes", err)
	}
	return quizzes, nil
}
