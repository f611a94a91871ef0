package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActionType identifies which surface produced a ledger entry.
type ActionType string

const (
	ActionCheckIn            ActionType = "check_in"
	ActionQuizCompleted      ActionType = "quiz_completed"
	ActionEventCompleted     ActionType = "event_completed"
	ActionContentSubmitted   ActionType = "content_submitted"
	ActionLessonCompleted    ActionType = "lesson_completed"
	ActionBadgeAwarded       ActionType = "badge_awarded"
	ActionAdminGrant         ActionType = "admin_grant"
	ActionAdminReset         ActionType = "admin_reset"
)

// ActivityLedgerEntry is the append-only audit record of every reward-granting
// action. Rows are never updated or deleted; current totals live on UserProgress.
type ActivityLedgerEntry struct {
	ID             string         `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string         `gorm:"index;not null" json:"external_user_id"`
	ActionType     ActionType     `gorm:"type:varchar(32);not null;index" json:"action_type"`
	Description    string         `gorm:"type:text" json:"description"`
	XPEarned       int64          `gorm:"not null;default:0" json:"xp_earned"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// StreakEntryKind distinguishes a real check-in from a consumed freeze.
type StreakEntryKind string

const (
	StreakEntryCheckIn StreakEntryKind = "check_in"
	StreakEntryFreeze  StreakEntryKind = "freeze"
)

// StreakLedgerEntry records one streak day per row. The composite unique index on
// (user, date, kind) is the authoritative once-per-day guard for check-ins: the
// insert itself is the idempotency check, never a read-then-write.
type StreakLedgerEntry struct {
	ID             string          `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string          `gorm:"uniqueIndex:idx_streak_user_day_kind;not null" json:"external_user_id"`
	EntryDate      time.Time       `gorm:"uniqueIndex:idx_streak_user_day_kind;type:date;not null" json:"entry_date"`
	Kind           StreakEntryKind `gorm:"uniqueIndex:idx_streak_user_day_kind;type:varchar(16);not null" json:"kind"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
