package service

import (
	"context"
	"strings"

	"tavern/internal/models"
	"tavern/internal/repository"
)

// CommentService handles comment business logic.
type CommentService interface {
	Create(ctx context.Context, authorID uint, cid uint, content string) (*models.Comment, error)
	ListByCampaign(ctx context.Context, cid uint, viewerID uint, limit, offset int) ([]models.Comment, error)
	Update(ctx context.Context, commentID uint, actingUserID uint, content string) (*models.Comment, error)
	Delete(ctx context.Context, commentID uint, actingUserID uint, isAdmin bool) error
}

type commentService struct {
	comments  repository.CommentRepository
	campaigns repository.CampaignRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, campaigns repository.CampaignRepository) CommentService {
	return &commentService{comments: comments, campaigns: campaigns}
}

func (s *commentService) Create(ctx context.Context, authorID uint, cid uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	campaign, err := s.campaigns.GetByCID(ctx, cid, authorID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:    content,
		UserID:     authorID,
		CampaignID: campaign.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, comment.ID)
}

// ListByCampaign mirrors the hidden-campaign gating of the campaign read path.
func (s *commentService) ListByCampaign(ctx context.Context, cid uint, viewerID uint, limit, offset int) ([]models.Comment, error) {
	campaign, err := s.campaigns.GetByCID(ctx, cid, viewerID)
	if err != nil {
		return nil, err
	}
	if campaign.IsHidden && viewerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.comments.ListByCampaign(ctx, campaign.ID, limit, offset)
}

func (s *commentService) Update(ctx context.Context, commentID uint, actingUserID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actingUserID {
		return nil, models.NewForbiddenError("Only the comment author can edit it")
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete is permitted for the comment author, the campaign owner, or an admin.
func (s *commentService) Delete(ctx context.Context, commentID uint, actingUserID uint, isAdmin bool) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	allowed := comment.UserID == actingUserID ||
		comment.Campaign.UserID == actingUserID ||
		isAdmin
	if !allowed {
		return models.NewForbiddenError("Not permitted to delete this comment")
	}
	return s.comments.Delete(ctx, comment)
}
