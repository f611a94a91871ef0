package models

import "time"

// Lesson is a published learning unit (species guides, habitat care...).
type Lesson struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Summary     string `gorm:"type:text" json:"summary"`
	Published   bool   `gorm:"default:true" json:"published"`

	Timestamps
}

// LessonCompletion marks a lesson as done for a user. The composite unique index
// makes re-completion a benign no-op: XP is granted once per (user, lesson).
type LessonCompletion struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_lesson;not null" json:"external_user_id"`
	LessonID       string    `gorm:"uniqueIndex:idx_user_lesson;not null" json:"lesson_id"`
	XPAwarded      int64     `gorm:"default:0" json:"xp_awarded"`
	CompletedAt    time.Time `gorm:"autoCreateTime" json:"completed_at"`
}
