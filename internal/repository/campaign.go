package repository

import (
	"context"
	"errors"

	"tavern/internal/cache"
	"tavern/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRepository defines persistence operations for campaigns and upvotes.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByCID(ctx context.Context, cid uint, viewerID uint) (*models.Campaign, error)
	List(ctx context.Context, limit, offset int, viewerID uint, followingOnly bool) ([]models.Campaign, error)
	ListByUser(ctx context.Context, userID uint, viewerID uint, limit, offset int) ([]models.Campaign, error)
	Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, campaign *models.Campaign) error
	Upvote(ctx context.Context, userID, campaignID uint) error
	RemoveUpvote(ctx context.Context, userID, campaignID uint) error
	IsUpvoted(ctx context.Context, userID, campaignID uint) (bool, error)
}

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository returns a new CampaignRepository implementation.
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

// applyCampaignDetails decorates the query with the derived upvote columns.
// viewerID 0 means anonymous, in which case upvoted is always false.
func applyCampaignDetails(q *gorm.DB, viewerID uint) *gorm.DB {
	return q.
		Select("campaigns.*, "+
			"(SELECT COUNT(*) FROM upvotes WHERE upvotes.campaign_id = campaigns.id AND upvotes.deleted_at IS NULL) as upvote_count, "+
			"EXISTS(SELECT 1 FROM upvotes WHERE upvotes.campaign_id = campaigns.id AND upvotes.user_id = ? AND upvotes.deleted_at IS NULL) as upvoted", viewerID).
		Preload("User")
}

// Create assigns the next cid and seeds the owner's upvote in one transaction.
// Cids are assigned over all rows including soft-deleted ones so a cid is
// never reused after a delete.
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxCID uint
		if err := tx.Unscoped().Model(&models.Campaign{}).
			Select("COALESCE(MAX(cid), 0)").Scan(&maxCID).Error; err != nil {
			return err
		}
		campaign.CID = maxCID + 1

		if err := tx.Create(campaign).Error; err != nil {
			return err
		}

		// The creator starts with their own upvote.
		return tx.Create(&models.Upvote{
			UserID:     campaign.UserID,
			CampaignID: campaign.ID,
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *campaignRepository) GetByCID(ctx context.Context, cid uint, viewerID uint) (*models.Campaign, error) {
	var campaign models.Campaign
	q := applyCampaignDetails(r.db.WithContext(ctx).Model(&models.Campaign{}), viewerID)
	if err := q.Where("campaigns.cid = ?", cid).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Campaign", cid)
		}
		return nil, models.NewInternalError(err)
	}
	return &campaign, nil
}

func (r *campaignRepository) List(ctx context.Context, limit, offset int, viewerID uint, followingOnly bool) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	q := applyCampaignDetails(r.db.WithContext(ctx).Model(&models.Campaign{}), viewerID)

	if viewerID == 0 {
		q = q.Where("campaigns.is_hidden = ?", false)
	}
	if followingOnly {
		q = q.Where("campaigns.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)", viewerID)
	}

	if err := q.Order("campaigns.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&campaigns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return campaigns, nil
}

func (r *campaignRepository) ListByUser(ctx context.Context, userID uint, viewerID uint, limit, offset int) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	q := applyCampaignDetails(r.db.WithContext(ctx).Model(&models.Campaign{}), viewerID).
		Where("campaigns.user_id = ?", userID)

	if viewerID == 0 {
		q = q.Where("campaigns.is_hidden = ?", false)
	}

	if err := q.Order("campaigns.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&campaigns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return campaigns, nil
}

// Search matches the query against title and description. Hidden campaigns
// are not excluded here; see the service layer notes on search visibility.
func (r *campaignRepository) Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	pattern := "%" + query + "%"
	q := applyCampaignDetails(r.db.WithContext(ctx).Model(&models.Campaign{}), viewerID).
		Where("campaigns.title ILIKE ? OR campaigns.description ILIKE ?", pattern, pattern)

	if err := q.Order("campaigns.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&campaigns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return campaigns, nil
}

func (r *campaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Save(campaign).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCampaign(ctx, campaign.CID)
	return nil
}

func (r *campaignRepository) Delete(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Delete(campaign).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCampaign(ctx, campaign.CID)
	return nil
}

// Upvote is idempotent. A second upvote from the same user is a no-op.
func (r *campaignRepository) Upvote(ctx context.Context, userID, campaignID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Upvote{UserID: userID, CampaignID: campaignID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RemoveUpvote hard deletes so a later upvote does not trip the unique index
// on the soft-deleted row.
func (r *campaignRepository) RemoveUpvote(ctx context.Context, userID, campaignID uint) error {
	err := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		Delete(&models.Upvote{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *campaignRepository) IsUpvoted(ctx context.Context, userID, campaignID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Upvote{}).
		Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
