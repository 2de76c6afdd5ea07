package service

import (
	"context"

	"tavern/internal/cache"
	"tavern/internal/models"
	"tavern/internal/repository"
	"tavern/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Profile is the public-facing view of a user.
type Profile struct {
	Username      string            `json:"username"`
	IsAdmin       bool              `json:"is_admin"`
	Tagline       string            `json:"tagline"`
	Email         string            `json:"email,omitempty"`
	FollowerCount int64             `json:"follower_count"`
	IsFollowing   bool              `json:"is_following"`
	IsFollower    bool              `json:"is_follower"`
	Campaigns     []models.Campaign `json:"campaigns"`
}

// FollowerInfo is a follower annotated with the viewer's relationship to them.
type FollowerInfo struct {
	Username    string `json:"username"`
	Tagline     string `json:"tagline"`
	IsFollowing bool   `json:"is_following"`
	IsFollower  bool   `json:"is_follower"`
}

// UpdateProfileInput is a partial patch. Nil means "not provided"; an
// explicit empty tagline clears the field.
type UpdateProfileInput struct {
	Email    *string `json:"email"`
	Tagline  *string `json:"tagline"`
	Password *string `json:"password"`
}

// ProfileService aggregates a user's public-facing data.
type ProfileService interface {
	GetProfile(ctx context.Context, username string, viewerID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, username string, actingUserID uint, isAdmin bool, input UpdateProfileInput) (*Profile, error)
	GetFollowers(ctx context.Context, username string, viewerID uint, limit, offset int) ([]FollowerInfo, error)
}

type profileService struct {
	users     repository.UserRepository
	campaigns repository.CampaignRepository
	follows   repository.FollowRepository
}

// NewProfileService creates a new profile service.
func NewProfileService(users repository.UserRepository, campaigns repository.CampaignRepository, follows repository.FollowRepository) ProfileService {
	return &profileService{users: users, campaigns: campaigns, follows: follows}
}

// GetProfile derives the follower count and relationship flags per request.
// The email field is included for any authenticated viewer.
// Anonymous profiles are viewer-independent, so only those are cached.
func (s *profileService) GetProfile(ctx context.Context, username string, viewerID uint) (*Profile, error) {
	if viewerID == 0 {
		var profile Profile
		err := cache.Aside(ctx, cache.ProfileKey(username), &profile, cache.ProfileTTL, func() error {
			p, err := s.buildProfile(ctx, username, 0)
			if err != nil {
				return err
			}
			profile = *p
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}
	return s.buildProfile(ctx, username, viewerID)
}

func (s *profileService) buildProfile(ctx context.Context, username string, viewerID uint) (*Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	followerCount, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Username:      user.Username,
		IsAdmin:       user.IsAdmin,
		Tagline:       user.Tagline,
		FollowerCount: followerCount,
	}

	if viewerID != 0 {
		profile.Email = user.Email
		if viewerID != user.ID {
			if profile.IsFollowing, err = s.follows.Exists(ctx, viewerID, user.ID); err != nil {
				return nil, err
			}
			if profile.IsFollower, err = s.follows.Exists(ctx, user.ID, viewerID); err != nil {
				return nil, err
			}
		}
	}

	campaigns, err := s.campaigns.ListByUser(ctx, user.ID, viewerID, 100, 0)
	if err != nil {
		return nil, err
	}
	blankContentForAnonymous(campaigns, viewerID)
	profile.Campaigns = campaigns

	return profile, nil
}

// UpdateProfile is permitted for the profile owner or an admin.
func (s *profileService) UpdateProfile(ctx context.Context, username string, actingUserID uint, isAdmin bool, input UpdateProfileInput) (*Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if user.ID != actingUserID && !isAdmin {
		return nil, models.NewForbiddenError("Not permitted to update this profile")
	}

	if input.Email != nil {
		if err := validation.ValidateEmail(*input.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *input.Email
	}
	if input.Tagline != nil {
		user.Tagline = *input.Tagline
	}
	if input.Password != nil {
		if err := validation.ValidatePassword(*input.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, username, actingUserID)
}

// GetFollowers lists the users following the target, each annotated with the
// viewer's relationship to that follower.
func (s *profileService) GetFollowers(ctx context.Context, username string, viewerID uint, limit, offset int) ([]FollowerInfo, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	followers, err := s.follows.ListFollowers(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	infos := make([]FollowerInfo, 0, len(followers))
	for _, f := range followers {
		info := FollowerInfo{Username: f.Username, Tagline: f.Tagline}
		if f.ID != viewerID {
			if info.IsFollowing, err = s.follows.Exists(ctx, viewerID, f.ID); err != nil {
				return nil, err
			}
			if info.IsFollower, err = s.follows.Exists(ctx, f.ID, viewerID); err != nil {
				return nil, err
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
