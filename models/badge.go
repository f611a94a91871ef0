package models

import (
	"time"

	"gorm.io/datatypes"
)

// RequirementKind is the closed set of statistics a badge can gate on.
type RequirementKind string

const (
	RequirementLevel        RequirementKind = "level"
	RequirementContentCount RequirementKind = "content_count"
	RequirementEventCount   RequirementKind = "event_count"
	RequirementStreakLength RequirementKind = "streak_length"
)

// BadgeDefinition: static catalog entry (seeded from BadgeCatalog on boot).
type BadgeDefinition struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_OBSERVATION", "STREAK_30"
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	IconURL     string `gorm:"type:text" json:"icon_url"`
	Rarity      string `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary

	RequirementKind      RequirementKind `gorm:"type:varchar(32);not null" json:"requirement_kind"`
	RequirementThreshold int64           `gorm:"not null" json:"requirement_threshold"`

	// Hidden badges are omitted from the public catalog until earned.
	Hidden bool `gorm:"default:false" json:"hidden"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BadgeAward: one award per (user, badge), ever. The composite unique index is the
// authoritative guard — concurrent evaluations race on the insert, and the loser
// treats the duplicate-key error as success.
type BadgeAward struct {
	ID             string         `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string         `gorm:"uniqueIndex:idx_user_badge;not null" json:"external_user_id"`
	BadgeCode      string         `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_code"`
	EarnedAt       time.Time      `gorm:"autoCreateTime" json:"earned_at"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
}

// BadgeCatalog is the built-in badge set, upserted by code at startup.
var BadgeCatalog = []BadgeDefinition{
	{
		Code:                 "FIRST_OBSERVATION",
		Name:                 "First Sighting",
		Description:          "Submitted your first observation",
		Rarity:               "common",
		RequirementKind:      RequirementContentCount,
		RequirementThreshold: 1,
	},
	{
		Code:                 "FIELD_NOTES_25",
		Name:                 "Field Naturalist",
		Description:          "Submitted 25 observations",
		Rarity:               "rare",
		RequirementKind:      RequirementContentCount,
		RequirementThreshold: 25,
	},
	{
		Code:                 "FIELD_NOTES_100",
		Name:                 "Citizen Scientist",
		Description:          "Submitted 100 observations",
		Rarity:               "epic",
		RequirementKind:      RequirementContentCount,
		RequirementThreshold: 100,
	},
	{
		Code:                 "FIRST_EVENT",
		Name:                 "Boots on the Ground",
		Description:          "Completed your first conservation event",
		Rarity:               "common",
		RequirementKind:      RequirementEventCount,
		RequirementThreshold: 1,
	},
	{
		Code:                 "EVENT_VETERAN",
		Name:                 "Habitat Hero",
		Description:          "Completed 10 conservation events",
		Rarity:               "epic",
		RequirementKind:      RequirementEventCount,
		RequirementThreshold: 10,
	},
	{
		Code:                 "STREAK_7",
		Name:                 "Week of Wild",
		Description:          "Checked in 7 days in a row",
		Rarity:               "common",
		RequirementKind:      RequirementStreakLength,
		RequirementThreshold: 7,
	},
	{
		Code:                 "STREAK_30",
		Name:                 "Iron Will",
		Description:          "Checked in 30 days in a row",
		Rarity:               "epic",
		RequirementKind:      RequirementStreakLength,
		RequirementThreshold: 30,
	},
	{
		Code:                 "LEVEL_10",
		Name:                 "Ranger",
		Description:          "Reached level 10",
		Rarity:               "rare",
		RequirementKind:      RequirementLevel,
		RequirementThreshold: 10,
	},
	{
		Code:                 "LEVEL_25",
		Name:                 "Warden",
		Description:          "Reached level 25",
		Rarity:               "epic",
		RequirementKind:      RequirementLevel,
		RequirementThreshold: 25,
	},
	{
		Code:                 "LEVEL_50",
		Name:                 "Guardian of the Wild",
		Description:          "Reached level 50 — the summit",
		Rarity:               "legendary",
		RequirementKind:      RequirementLevel,
		RequirementThreshold: 50,
		Hidden:               true,
	},
	{
		Code:                 "STREAK_100",
		Name:                 "Centurion",
		Description:          "Checked in 100 days in a row",
		Rarity:               "legendary",
		RequirementKind:      RequirementStreakLength,
		RequirementThreshold: 100,
		Hidden:               true,
	},
}
