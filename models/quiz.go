package models

import "time"

// Quiz is a published species/conservation quiz users can take daily.
type Quiz struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string `gorm:"not null" json:"title"`
	Description   string `gorm:"type:text" json:"description"`
	QuestionCount int    `gorm:"not null" json:"question_count"`
	Published     bool   `gorm:"default:true" json:"published"`

	Timestamps
}

// QuizStreakState is the quiz streak counter — independent from the daily
// check-in streak, with its own day-granularity rules. One row per user.
type QuizStreakState struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	StreakDays     int        `gorm:"default:0" json:"streak_days"`
	LastQuizDate   *time.Time `json:"last_quiz_date,omitempty"` // calendar date (UTC midnight)
	CumulativeXP   int64      `gorm:"default:0" json:"cumulative_xp"`

	Timestamps
}
