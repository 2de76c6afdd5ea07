// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"tavern/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	questAdjectives = []string{
		"Forgotten", "Sunken", "Cursed", "Gilded", "Shattered", "Whispering",
		"Emerald", "Crimson", "Hollow", "Frozen", "Burning", "Endless",
	}
	questPlaces = []string{
		"Catacombs", "Keep", "Marsh", "Spire", "Barrow", "Vale",
		"Citadel", "Mines", "Archipelago", "Wastes", "Monastery", "Depths",
	}
	questHooks = []string{
		"A stranger at the bar slides a torn map across the table.",
		"The village elder has not been seen since the last full moon.",
		"Caravans keep vanishing on the old trade road.",
		"Something stirs beneath the abandoned mine.",
		"The duke's reward doubles by the hour, and nobody asks why.",
		"Fishermen refuse to sail past the broken lighthouse.",
	}
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving. All seeded users
// share the password "password123".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Gamertag(), gofakeit.Number(10, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashedPassword),
		Tagline:  gofakeit.Sentence(6),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCampaign constructs and persists a campaign with a quest-flavored
// title and a spread of creation dates, seeding the owner's upvote like the
// API does.
func (f *Factory) CreateCampaign(owner *models.User, cid uint, overrides ...func(*models.Campaign)) (*models.Campaign, error) {
	campaign := &models.Campaign{
		CID: cid,
		Title: fmt.Sprintf("The %s %s",
			questAdjectives[f.rng.Intn(len(questAdjectives))],
			questPlaces[f.rng.Intn(len(questPlaces))]),
		Description: questHooks[f.rng.Intn(len(questHooks))],
		Content:     gofakeit.Paragraph(3, 5, 12, "\n\n"),
		IsHidden:    f.rng.Intn(10) == 0,
		UserID:      owner.ID,
		CreatedAt:   f.pastTimestamp(90),
	}

	for _, override := range overrides {
		override(campaign)
	}

	if err := f.db.Create(campaign).Error; err != nil {
		return nil, err
	}
	if err := f.db.Create(&models.Upvote{UserID: owner.ID, CampaignID: campaign.ID}).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// CreateComment constructs and persists a comment on the given campaign.
func (f *Factory) CreateComment(author *models.User, campaign *models.Campaign) (*models.Comment, error) {
	comment := &models.Comment{
		Content:    gofakeit.Sentence(f.rng.Intn(12) + 4),
		UserID:     author.ID,
		CampaignID: campaign.ID,
		CreatedAt:  f.pastTimestamp(30),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// pastTimestamp returns a time up to maxDays in the past for a realistic
// created_at spread.
func (f *Factory) pastTimestamp(maxDays int) time.Time {
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
