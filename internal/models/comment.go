// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a campaign.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Content    string         `gorm:"not null" json:"content"`
	UserID     uint           `gorm:"not null" json:"user_id"`
	CampaignID uint           `gorm:"not null;index" json:"campaign_id"`
	User       User           `gorm:"foreignKey:UserID" json:"user"`
	// Loaded for permission checks only; omitempty is a no-op on structs,
	// so keep the campaign out of JSON entirely.
	Campaign   Campaign       `gorm:"foreignKey:CampaignID" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
