// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign represents a long-form adventure post in the Adventurer's Tavern.
// CID is the public-facing identifier used in URLs; ID stays internal.
type Campaign struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	CID         uint   `gorm:"column:cid;uniqueIndex;not null" json:"cid"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	// Content is the full campaign body, withheld from anonymous viewers at
	// the read path.
	Content  string `gorm:"type:text;not null" json:"content,omitempty"`
	IsHidden bool   `gorm:"not null;default:false" json:"is_hidden"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	// UpvoteCount is not persisted; computed at query time
	UpvoteCount int `gorm:"->" json:"upvote_count"`
	// Upvoted indicates whether the current requesting user upvoted this campaign (computed)
	Upvoted   bool           `gorm:"->" json:"upvoted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
