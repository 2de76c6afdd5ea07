package service

import (
	"testing"

	"tavern/internal/database"
	"tavern/internal/models"
	"tavern/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type serviceEnv struct {
	db        *gorm.DB
	users     repository.UserRepository
	campaigns repository.CampaignRepository
	comments  repository.CommentRepository
	follows   repository.FollowRepository
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return &serviceEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		campaigns: repository.NewCampaignRepository(db),
		comments:  repository.NewCommentRepository(db),
		follows:   repository.NewFollowRepository(db),
	}
}

func (e *serviceEnv) createUser(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@tavern.example",
		Password: "hashed-password",
		IsAdmin:  admin,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
