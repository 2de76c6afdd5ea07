// Package service implements the business logic layer.
package service

import (
	"context"
	"strings"

	"tavern/internal/cache"
	"tavern/internal/middleware"
	"tavern/internal/models"
	"tavern/internal/repository"
)

// CreateCampaignInput carries the fields for a new campaign.
type CreateCampaignInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	IsHidden    bool   `json:"is_hidden"`
}

// UpdateCampaignInput is a partial patch. Nil pointers mean "leave unchanged";
// a present-but-empty string is rejected.
type UpdateCampaignInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
}

// UpvoteResult is the outcome of an upvote toggle.
type UpvoteResult struct {
	Upvoted     bool `json:"upvoted"`
	UpvoteCount int  `json:"upvote_count"`
}

// CampaignService handles campaign business logic.
type CampaignService interface {
	Create(ctx context.Context, ownerID uint, input CreateCampaignInput) (*models.Campaign, error)
	Get(ctx context.Context, cid uint, viewerID uint) (*models.Campaign, error)
	List(ctx context.Context, viewerID uint, followingOnly bool, limit, offset int) ([]models.Campaign, error)
	Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Campaign, error)
	Update(ctx context.Context, cid uint, actingUserID uint, input UpdateCampaignInput) (*models.Campaign, error)
	Delete(ctx context.Context, cid uint, actingUserID uint, isAdmin bool) error
	ToggleUpvote(ctx context.Context, cid uint, userID uint) (*UpvoteResult, error)
}

type campaignService struct {
	campaigns repository.CampaignRepository
}

// NewCampaignService creates a new campaign service.
func NewCampaignService(campaigns repository.CampaignRepository) CampaignService {
	return &campaignService{campaigns: campaigns}
}

func (s *campaignService) Create(ctx context.Context, ownerID uint, input CreateCampaignInput) (*models.Campaign, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	campaign := &models.Campaign{
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		IsHidden:    input.IsHidden,
		UserID:      ownerID,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}
	middleware.CampaignMutations.WithLabelValues("create").Inc()

	// Re-read so the derived upvote fields reflect the seeded owner upvote.
	return s.campaigns.GetByCID(ctx, campaign.CID, ownerID)
}

// Get enforces record-level gating (hidden campaigns require authentication)
// and field-level gating (content withheld from anonymous viewers).
func (s *campaignService) Get(ctx context.Context, cid uint, viewerID uint) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByCID(ctx, cid, viewerID)
	if err != nil {
		return nil, err
	}
	if campaign.IsHidden && viewerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if viewerID == 0 {
		campaign.Content = ""
	}
	return campaign, nil
}

func (s *campaignService) List(ctx context.Context, viewerID uint, followingOnly bool, limit, offset int) ([]models.Campaign, error) {
	campaigns, err := s.campaigns.List(ctx, limit, offset, viewerID, followingOnly)
	if err != nil {
		return nil, err
	}
	blankContentForAnonymous(campaigns, viewerID)
	return campaigns, nil
}

// Search matches title and description. Hidden campaigns are not filtered
// out of results; see the known-issues list in DESIGN.md.
func (s *campaignService) Search(ctx context.Context, query string, viewerID uint, limit, offset int) ([]models.Campaign, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	campaigns, err := s.campaigns.Search(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	blankContentForAnonymous(campaigns, viewerID)
	return campaigns, nil
}

// Update is owner-only. Admins do not get an override here, unlike Delete.
func (s *campaignService) Update(ctx context.Context, cid uint, actingUserID uint, input UpdateCampaignInput) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByCID(ctx, cid, actingUserID)
	if err != nil {
		return nil, err
	}
	if campaign.UserID != actingUserID {
		return nil, models.NewForbiddenError("Only the campaign owner can edit it")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		campaign.Title = *input.Title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, models.NewValidationError("Description cannot be empty")
		}
		campaign.Description = *input.Description
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		campaign.Content = *input.Content
	}

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, err
	}
	middleware.CampaignMutations.WithLabelValues("update").Inc()
	return s.campaigns.GetByCID(ctx, cid, actingUserID)
}

func (s *campaignService) Delete(ctx context.Context, cid uint, actingUserID uint, isAdmin bool) error {
	campaign, err := s.campaigns.GetByCID(ctx, cid, actingUserID)
	if err != nil {
		return err
	}
	if campaign.UserID != actingUserID && !isAdmin {
		return models.NewForbiddenError("Only the campaign owner or an admin can delete it")
	}
	if err := s.campaigns.Delete(ctx, campaign); err != nil {
		return err
	}
	middleware.CampaignMutations.WithLabelValues("delete").Inc()
	return nil
}

// ToggleUpvote flips the caller's membership in the upvote set. Calling it
// twice returns the campaign to its original count.
func (s *campaignService) ToggleUpvote(ctx context.Context, cid uint, userID uint) (*UpvoteResult, error) {
	campaign, err := s.campaigns.GetByCID(ctx, cid, userID)
	if err != nil {
		return nil, err
	}

	upvoted, err := s.campaigns.IsUpvoted(ctx, userID, campaign.ID)
	if err != nil {
		return nil, err
	}

	if upvoted {
		err = s.campaigns.RemoveUpvote(ctx, userID, campaign.ID)
	} else {
		err = s.campaigns.Upvote(ctx, userID, campaign.ID)
	}
	if err != nil {
		return nil, err
	}
	cache.InvalidateCampaign(ctx, cid)
	middleware.CampaignMutations.WithLabelValues("upvote").Inc()

	refreshed, err := s.campaigns.GetByCID(ctx, cid, userID)
	if err != nil {
		return nil, err
	}
	return &UpvoteResult{
		Upvoted:     refreshed.Upvoted,
		UpvoteCount: refreshed.UpvoteCount,
	}, nil
}

func blankContentForAnonymous(campaigns []models.Campaign, viewerID uint) {
	if viewerID != 0 {
		return
	}
	for i := range campaigns {
		campaigns[i].Content = ""
	}
}
