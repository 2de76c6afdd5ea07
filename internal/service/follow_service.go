package service

import (
	"context"

	"tavern/internal/cache"
	"tavern/internal/models"
	"tavern/internal/repository"
)

// FollowService handles follow-graph mutations. Edges are one-directional;
// follower counts and lists are always derived from the edge table.
type FollowService interface {
	Follow(ctx context.Context, actingUserID uint, targetUsername string) error
	Unfollow(ctx context.Context, actingUserID uint, targetUsername string) error
}

type followService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

// NewFollowService creates a new follow service.
func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) FollowService {
	return &followService{follows: follows, users: users}
}

func (s *followService) Follow(ctx context.Context, actingUserID uint, targetUsername string) error {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundError("User", targetUsername)
	}
	if target.ID == actingUserID {
		return models.NewValidationError("Cannot follow yourself")
	}

	exists, err := s.follows.Exists(ctx, actingUserID, target.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.NewConflictError("Already following this user")
	}

	if err := s.follows.Create(ctx, actingUserID, target.ID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, target.Username)
	return nil
}

func (s *followService) Unfollow(ctx context.Context, actingUserID uint, targetUsername string) error {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundError("User", targetUsername)
	}
	if target.ID == actingUserID {
		return models.NewValidationError("Cannot unfollow yourself")
	}

	exists, err := s.follows.Exists(ctx, actingUserID, target.ID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewConflictError("Not following this user")
	}

	if err := s.follows.Delete(ctx, actingUserID, target.ID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, target.Username)
	return nil
}
