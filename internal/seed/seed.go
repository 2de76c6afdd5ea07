package seed

import (
	"fmt"
	"log"

	"tavern/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers     int
	NumCampaigns int
	ShouldClean  bool
}

// Seed populates the database with demo users, campaigns, follows, upvotes,
// and comments.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d campaigns...", opts.NumUsers, opts.NumCampaigns)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	// cid assignment mirrors the API: next after the current max, counting
	// soft-deleted rows.
	var maxCID uint
	if err := db.Unscoped().Model(&models.Campaign{}).
		Select("COALESCE(MAX(cid), 0)").Scan(&maxCID).Error; err != nil {
		return fmt.Errorf("failed to read max cid: %w", err)
	}

	campaigns := make([]*models.Campaign, 0, opts.NumCampaigns)
	for i := 0; i < opts.NumCampaigns; i++ {
		owner := users[f.rng.Intn(len(users))]
		maxCID++
		campaign, err := f.CreateCampaign(owner, maxCID)
		if err != nil {
			return fmt.Errorf("failed to create campaigns: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	log.Printf("Created %d campaigns", len(campaigns))

	if err := createFollows(db, f, users); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	if err := createUpvotes(db, f, users, campaigns); err != nil {
		return fmt.Errorf("failed to create upvotes: %w", err)
	}

	numComments := 0
	for _, campaign := range campaigns {
		for i := 0; i < f.rng.Intn(5); i++ {
			author := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(author, campaign); err != nil {
				return fmt.Errorf("failed to create comments: %w", err)
			}
			numComments++
		}
	}
	log.Printf("Created %d comments", numComments)

	log.Println("Seeding complete")
	return nil
}

// createFollows gives each user a handful of outgoing follow edges.
func createFollows(db *gorm.DB, f *Factory, users []*models.User) error {
	edges := 0
	for _, follower := range users {
		for i := 0; i < f.rng.Intn(4); i++ {
			followee := users[f.rng.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			var count int64
			db.Model(&models.Follow{}).
				Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).
				Count(&count)
			if count > 0 {
				continue
			}
			if err := db.Create(&models.Follow{
				FollowerID: follower.ID,
				FolloweeID: followee.ID,
			}).Error; err != nil {
				return err
			}
			edges++
		}
	}
	log.Printf("Created %d follow edges", edges)
	return nil
}

// createUpvotes adds random extra upvotes beyond the seeded owner upvote.
func createUpvotes(db *gorm.DB, f *Factory, users []*models.User, campaigns []*models.Campaign) error {
	upvotes := 0
	for _, campaign := range campaigns {
		for i := 0; i < f.rng.Intn(len(users)); i++ {
			voter := users[f.rng.Intn(len(users))]
			if voter.ID == campaign.UserID {
				continue
			}
			var count int64
			db.Model(&models.Upvote{}).
				Where("user_id = ? AND campaign_id = ?", voter.ID, campaign.ID).
				Count(&count)
			if count > 0 {
				continue
			}
			if err := db.Create(&models.Upvote{
				UserID:     voter.ID,
				CampaignID: campaign.ID,
			}).Error; err != nil {
				return err
			}
			upvotes++
		}
	}
	log.Printf("Created %d extra upvotes", upvotes)
	return nil
}

// clearData removes all seedable rows. Order matters for FK constraints.
func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.Comment{},
		&models.Upvote{},
		&models.Follow{},
		&models.Campaign{},
		&models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
