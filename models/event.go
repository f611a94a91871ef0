package models

import "time"

// Event status is a one-way ladder: upcoming → active → completed.
// Cancelled is terminal from upcoming/active. A completed event can never be
// completed (or reopened) again.
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Event represents a group conservation event (cleanup, planting, survey...).
type Event struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	OrganizerID string `gorm:"index;not null" json:"organizer_id"` // ExternalUserID of the organizer
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	Status    string    `gorm:"type:varchar(16);default:'upcoming';index" json:"status"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Calculated, not stored
	ParticipantCount int64 `json:"participant_count,omitempty" gorm:"-"`

	Timestamps
}

// EventParticipation statuses. XP is only ever awarded to attended participants.
const (
	ParticipationRegistered = "registered"
	ParticipationAttended   = "attended"
	ParticipationCancelled  = "cancelled"
)

// EventParticipation links a user to an event. XPAwarded is written exactly once,
// inside the event-completion transaction, and only for attended participants.
type EventParticipation struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	EventID        string `gorm:"uniqueIndex:idx_event_user;not null" json:"event_id"`
	ExternalUserID string `gorm:"uniqueIndex:idx_event_user;not null" json:"external_user_id"`

	Status    string `gorm:"type:varchar(16);default:'registered'" json:"status"`
	XPAwarded int64  `gorm:"default:0" json:"xp_awarded"`

	Timestamps
}
