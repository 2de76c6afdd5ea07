package models

import (
	"time"

	"gorm.io/gorm"
)

// Upvote represents a user's upvote on a campaign.
// The combination of UserID and CampaignID must be unique.
type Upvote struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_user_campaign" json:"user_id"`
	CampaignID uint           `gorm:"not null;uniqueIndex:idx_user_campaign" json:"campaign_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	Campaign Campaign `gorm:"foreignKey:CampaignID" json:"campaign"`
}
