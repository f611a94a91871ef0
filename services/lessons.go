package services

import (
	"conservation-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonService rewards lesson completions. Completing the same lesson twice is
// a benign no-op: the first completion owns the XP, the second gets the current
// snapshot and zero.
type LessonService struct {
	DB      *gorm.DB
	Rewards *RewardService
}

func NewLessonService(db *gorm.DB, rewards *RewardService) *LessonService {
	return &LessonService{DB: db, Rewards: rewards}
}

func (s *LessonService) CompleteLesson(externalUserID, lessonID string) (*RewardResult, error) {
	var lesson models.Lesson
	if err := s.DB.Where("id = ? AND published = ?", lessonID, true).First(&lesson).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "lesson", ID: lessonID}
		}
		return nil, storeErr("fetch lesson", err)
	}

	var result *RewardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// progress row must exist before the counter bump below can land
		if _, err := s.Rewards.ensureProgressTx(tx, externalUserID); err != nil {
			return err
		}

		completion := models.LessonCompletion{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			LessonID:       lessonID,
			XPAwarded:      s.Rewards.Weights.LessonXP,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if isDuplicate(err) {
				// Already completed: no-op success with zero XP.
				prog, perr := s.Rewards.ensureProgressTx(tx, externalUserID)
				if perr != nil {
					return perr
				}
				snapshot := *prog
				result = &RewardResult{XPEarned: 0, Progress: &snapshot}
				return nil
			}
			return storeErr("create lesson completion", err)
		}

		if err := tx.Model(&models.UserProgress{}).
			Where("external_user_id = ?", externalUserID).
			UpdateColumn("total_lessons", gorm.Expr("total_lessons + 1")).Error; err != nil {
			return storeErr("bump lesson counter", err)
		}

		r, err := s.Rewards.awardTx(tx, externalUserID, models.ActionLessonCompleted,
			s.Rewards.Weights.LessonXP, "Completed lesson: "+lesson.Title,
			map[string]interface{}{"lesson_id": lessonID})
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

// ListLessons returns the published lesson catalog.
func (s *LessonService) ListLessons() ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := s.DB.Where("published = ?", true).Order("created_at DESC").Find(&lessons).Error; err != nil {
		return nil, storeErr("fetch lessons", err)
	}
	return lessons, nil
}
