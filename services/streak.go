package services

import (
	"log"
	"time"

	"conservation-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Streak states reported by Status.
const (
	StreakStateCheckedIn = "checked_in" // already checked in today
	StreakStatePending   = "pending"    // no history, or yesterday was fine — nothing to do yet
	StreakStateBroken    = "broken"     // missed days exceeded available freezes
)

// StreakStatus is the answer to "where does my streak stand right now".
type StreakStatus struct {
	State           string `json:"state"`
	StreakDays      int    `json:"streak_days"`
	StreakFreezes   int    `json:"streak_freezes"`
	MissedDays      int    `json:"missed_days"`
	FreezesConsumed int    `json:"freezes_consumed"`
}

// StreakService owns the daily check-in streak: continuity, freeze consumption,
// and the once-per-day guard. Day arithmetic is calendar-date subtraction in
// UTC — never millisecond-duration division, which misclassifies boundaries
// around DST transitions.
type StreakService struct {
	DB      *gorm.DB
	Rewards *RewardService
}

func NewStreakService(db *gorm.DB, rewards *RewardService) *StreakService {
	return &StreakService{DB: db, Rewards: rewards}
}

// dateOnly truncates to the UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b. Both operands are
// normalized to UTC midnight first, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// Status reports the current streak state, reconciling missed days first (which
// may consume freezes — querying status is the moment a frozen gap gets bridged).
func (s *StreakService) Status(externalUserID string) (*StreakStatus, error) {
	var status *StreakStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		prog, err := s.Rewards.ensureProgressTx(tx, externalUserID)
		if err != nil {
			return err
		}

		today := dateOnly(time.Now())
		st, err := s.reconcileTx(tx, prog, today)
		if err != nil {
			return err
		}
		status = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// reconcileTx applies the missed-day rules to prog in place and persists any
// change. Idempotent: after bridging a gap with freezes, LastCheckIn advances
// over the frozen span so a second call sees gap <= 1 and does nothing.
func (s *StreakService) reconcileTx(tx *gorm.DB, prog *models.UserProgress, today time.Time) (*StreakStatus, error) {
	status := &StreakStatus{
		State:         StreakStatePending,
		StreakDays:    prog.StreakDays,
		StreakFreezes: prog.StreakFreezes,
	}

	if prog.LastCheckIn == nil {
		return status, nil
	}

	gap := daysBetween(*prog.LastCheckIn, today)
	switch {
	case gap <= 0:
		status.State = StreakStateCheckedIn
		return status, nil
	case gap == 1:
		return status, nil
	}

	missed := gap - 1
	status.MissedDays = missed

	if prog.StreakFreezes >= missed {
		// Bridge the gap: one freeze ledger row per missed day. A concurrent
		// reconcile may have written some already; duplicates are skips.
		for i := 1; i <= missed; i++ {
			day := dateOnly(prog.LastCheckIn.AddDate(0, 0, i))
			entry := models.StreakLedgerEntry{
				ID:             uuid.NewString(),
				ExternalUserID: prog.ExternalUserID,
				EntryDate:      day,
				Kind:           models.StreakEntryFreeze,
			}
			if err := tx.Create(&entry).Error; err != nil && !isDuplicate(err) {
				return nil, storeErr("insert freeze entry", err)
			}
		}
		prog.StreakFreezes -= missed
		yesterday := dateOnly(today.AddDate(0, 0, -1))
		prog.LastCheckIn = &yesterday
		status.FreezesConsumed = missed
		status.StreakFreezes = prog.StreakFreezes
		log.Printf("🧊 streak frozen: %s bridged %d missed day(s), %d freeze(s) left",
			prog.ExternalUserID, missed, prog.StreakFreezes)
	} else {
		// Not enough freezes: the streak breaks. Freezes are kept.
		prog.StreakDays = 0
		status.State = StreakStateBroken
		status.StreakDays = 0
	}

	if err := tx.Save(prog).Error; err != nil {
		return nil, storeErr("save progress", err)
	}
	return status, nil
}

// CheckIn records today's check-in: reconcile the gap, claim today's slot via
// the unique streak-ledger index, bump the streak, and grant the fixed reward.
// A second call on the same calendar date is a benign ConflictError and a no-op.
func (s *StreakService) CheckIn(externalUserID string) (*RewardResult, error) {
	var result *RewardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		prog, err := s.Rewards.ensureProgressTx(tx, externalUserID)
		if err != nil {
			return err
		}

		today := dateOnly(time.Now())
		if _, err := s.reconcileTx(tx, prog, today); err != nil {
			return err
		}

		// The insert IS the idempotency check. Not an in-memory or read-based
		// guard: two concurrent check-ins race on this index and one loses.
		entry := models.StreakLedgerEntry{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			EntryDate:      today,
			Kind:           models.StreakEntryCheckIn,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if isDuplicate(err) {
				return &ConflictError{Resource: "check-in", Reason: "already checked in today", Benign: true}
			}
			return storeErr("insert check-in entry", err)
		}

		prog.StreakDays++
		prog.LastCheckIn = &today
		if err := tx.Save(prog).Error; err != nil {
			return storeErr("save progress", err)
		}

		r, err := s.Rewards.awardTx(tx, externalUserID, models.ActionCheckIn,
			s.Rewards.Weights.CheckInXP, "Daily check-in",
			map[string]interface{}{"streak_days": prog.StreakDays})
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
