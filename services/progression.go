package services

import (
	"encoding/json"
	"log"
	"time"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// XPWeights define relative values per action surface (tunable via config/env later).
// Centralized here so no reward constant lives at a call site.
type XPWeights struct {
	CheckInXP         int64
	QuizCorrectXP     int64 // per correct answer
	QuizStreakBonusXP int64 // granted when the quiz streak hits a multiple of 7
	EventXP           int64 // flat, per attended participant
	ObservationXP     int64
	LessonXP          int64
}

var DefaultXPWeights = XPWeights{
	CheckInXP:         10,
	QuizCorrectXP:     5,
	QuizStreakBonusXP: 50,
	EventXP:           100,
	ObservationXP:     25,
	LessonXP:          15,
}

// LevelUp reports a level transition detected during an award.
type LevelUp struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// RewardResult is what every action surface gets back from the distributor.
// NewBadges is for UI notification only — never the source of truth.
type RewardResult struct {
	XPEarned  int64                    `json:"xp_earned"`
	LeveledUp *LevelUp                 `json:"leveled_up,omitempty"`
	NewBadges []models.BadgeDefinition `json:"new_badges"`
	Progress  *models.UserProgress     `json:"progress"`
}

// RewardService is the single orchestration point for every XP-granting action:
// apply the delta, recompute level, persist, write one ledger entry, evaluate
// badges — in that order, inside one transaction.
type RewardService struct {
	DB      *gorm.DB
	Weights XPWeights
	Badges  *BadgeService
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{DB: db, Weights: DefaultXPWeights, Badges: NewBadgeService()}
}

// EnsureProgressRecord makes sure a UserProgress row exists (idempotent; a lost
// race on the unique index means someone else created it, so we re-read).
func (s *RewardService) EnsureProgressRecord(externalUserID string) (*models.UserProgress, error) {
	return s.ensureProgressTx(s.DB, externalUserID)
}

func (s *RewardService) ensureProgressTx(tx *gorm.DB, externalUserID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := tx.Where("external_user_id = ?", externalUserID).First(&prog).Error
	if err == nil {
		return &prog, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, storeErr("fetch progress", err)
	}

	prog = models.UserProgress{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		TotalXP:        0,
		Level:          1,
	}
	if err := tx.Create(&prog).Error; err != nil {
		if isDuplicate(err) {
			// concurrent creation won; use theirs
			if err := tx.Where("external_user_id = ?", externalUserID).First(&prog).Error; err != nil {
				return nil, storeErr("refetch progress", err)
			}
			return &prog, nil
		}
		return nil, storeErr("create progress", err)
	}
	return &prog, nil
}

// Award runs the full distribution sequence in its own transaction.
func (s *RewardService) Award(externalUserID string, action models.ActionType, xpDelta int64, description string, metadata map[string]interface{}) (*RewardResult, error) {
	var result *RewardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.awardTx(tx, externalUserID, action, xpDelta, description, metadata)
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

// awardTx is the in-transaction distributor, composed into the check-in, quiz,
// event and lesson flows that already hold a transaction. The progress update
// and its ledger entry commit or roll back together — never one without the other.
func (s *RewardService) awardTx(tx *gorm.DB, externalUserID string, action models.ActionType, xpDelta int64, description string, metadata map[string]interface{}) (*RewardResult, error) {
	if xpDelta < 0 {
		return nil, &ValidationError{Field: "xp", Reason: "xp deltas must be non-negative"}
	}

	prog, err := s.ensureProgressTx(tx, externalUserID)
	if err != nil {
		return nil, err
	}

	oldLevel := prog.Level
	prog.TotalXP += xpDelta

	newLevel := LevelForXP(prog.TotalXP)
	var leveledUp *LevelUp
	if newLevel != oldLevel {
		prog.Level = newLevel
		now := time.Now().UTC()
		prog.LastLevelUpAt = &now
		leveledUp = &LevelUp{From: oldLevel, To: newLevel}
	}

	if err := tx.Save(prog).Error; err != nil {
		return nil, storeErr("save progress", err)
	}

	entry := models.ActivityLedgerEntry{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		ActionType:     action,
		Description:    description,
		XPEarned:       xpDelta,
		Metadata:       metadataJSON(metadata),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, storeErr("append ledger entry", err)
	}

	newBadges, err := s.Badges.EvaluateTx(tx, prog)
	if err != nil {
		return nil, err
	}

	log.Printf("🌿 XP awarded: %s → +%d XP (total=%d, lvl=%d, action=%s)",
		externalUserID, xpDelta, prog.TotalXP, prog.Level, action)

	snapshot := *prog
	return &RewardResult{
		XPEarned:  xpDelta,
		LeveledUp: leveledUp,
		NewBadges: newBadges,
		Progress:  &snapshot,
	}, nil
}

// GrantXP is the admin surface for manual XP adjustments (upward only).
func (s *RewardService) GrantXP(externalUserID string, xp int64, reason string) (*RewardResult, error) {
	if xp <= 0 {
		return nil, &ValidationError{Field: "xp", Reason: "grant must be positive"}
	}
	if reason == "" {
		reason = "manual grant"
	}
	return s.Award(externalUserID, models.ActionAdminGrant, xp, reason, nil)
}

// ResetProgress is the one sanctioned non-monotonic XP change: an explicit
// administrative reset back to zero. The reset itself is ledgered.
func (s *RewardService) ResetProgress(externalUserID string, reason string) (*models.UserProgress, error) {
	var snapshot models.UserProgress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		prog, err := s.ensureProgressTx(tx, externalUserID)
		if err != nil {
			return err
		}
		prog.TotalXP = 0
		prog.Level = 1
		prog.LastLevelUpAt = nil
		if err := tx.Save(prog).Error; err != nil {
			return storeErr("save progress", err)
		}
		entry := models.ActivityLedgerEntry{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			ActionType:     models.ActionAdminReset,
			Description:    reason,
			XPEarned:       0,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storeErr("append ledger entry", err)
		}
		snapshot = *prog
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("⚠️ progress reset: %s (%s)", externalUserID, reason)
	return &snapshot, nil
}

// GetHistory returns the paginated user-facing activity feed, newest first.
func (s *RewardService) GetHistory(externalUserID string, page, size int) (map[string]interface{}, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.ActivityLedgerEntry{}).
		Where("external_user_id = ?", externalUserID).
		Count(&total).Error; err != nil {
		return nil, storeErr("count ledger entries", err)
	}

	var entries []models.ActivityLedgerEntry
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, storeErr("fetch ledger entries", err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return map[string]interface{}{
		"entries":     entries,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": totalPages,
	}, nil
}

func metadataJSON(m map[string]interface{}) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
