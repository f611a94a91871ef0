package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress tracks gamified progression for each user (denormalized for performance).
// Owned exclusively by the progression engine — mutated only through the
// RewardService / StreakService, never by UI-facing update calls.
type UserProgress struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression
	TotalXP int64 `json:"total_xp" gorm:"default:0"`
	Level   int   `json:"level" gorm:"default:1"` // 1..50, always derived from TotalXP

	// Daily check-in streak
	StreakDays    int        `json:"streak_days" gorm:"default:0"`
	StreakFreezes int        `json:"streak_freezes" gorm:"default:0"` // consumable credits
	LastCheckIn   *time.Time `json:"last_check_in,omitempty"`         // calendar date (UTC midnight), nil = never

	// Activity counters (badge statistics)
	TotalObservations int64 `json:"total_observations" gorm:"default:0"`
	TotalEvents       int64 `json:"total_events" gorm:"default:0"`
	TotalQuizzes      int64 `json:"total_quizzes" gorm:"default:0"`
	TotalLessons      int64 `json:"total_lessons" gorm:"default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
