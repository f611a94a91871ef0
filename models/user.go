package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileUser is a local snapshot of user data owned by the profile service.
// Populated by the sync worker; this service never writes back to the profile
// service. Roles and credentials stay remote — only display data is mirrored.
type ProfileUser struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID    string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username          string     `gorm:"index;not null" json:"username"`
	Email             string     `json:"email,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	IsBanned          bool       `json:"is_banned" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
