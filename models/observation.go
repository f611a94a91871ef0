package models

// Observation review statuses. The review flow keeps "rejected by reviewer" and
// "under dispute" as distinct values — they were historically conflated under a
// single "flagged" status, which made moderation queries ambiguous.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
	ReviewStatusDisputed = "disputed"
)

// Observation is a user-submitted wildlife/habitat sighting.
type Observation struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	SpeciesName string `gorm:"index;not null" json:"species_name"`
	Description string `gorm:"type:text" json:"description"`

	// Coordinates are required at submission (ValidationError otherwise).
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`

	PhotoURL string `gorm:"type:text" json:"photo_url,omitempty"`

	ReviewStatus string `gorm:"type:varchar(16);default:'pending';index" json:"review_status"`
	ReviewedBy   string `json:"reviewed_by,omitempty"`
	ReviewNote   string `gorm:"type:text" json:"review_note,omitempty"`

	XPEarned int64 `gorm:"default:0" json:"xp_earned"`

	Timestamps
}
