package service

import (
	"context"
	"testing"

	"tavern/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCampaign(t *testing.T, env *serviceEnv, owner *models.User, hidden bool) *models.Campaign {
	t.Helper()
	svc := NewCampaignService(env.campaigns)
	campaign, err := svc.Create(context.Background(), owner.ID, CreateCampaignInput{
		Title: "Quest", Description: "Hook", Content: "Body", IsHidden: hidden,
	})
	require.NoError(t, err)
	return campaign
}

func TestCommentCreateAndValidation(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewCommentService(env.comments, env.campaigns)
	ctx := context.Background()
	owner := env.createUser(t, "dungeonmaster", false)
	author := env.createUser(t, "wanderer", false)
	campaign := setupCampaign(t, env, owner, false)

	comment, err := svc.Create(ctx, author.ID, campaign.CID, "What a tale!")
	require.NoError(t, err)
	assert.Equal(t, "What a tale!", comment.Content)
	assert.Equal(t, author.Username, comment.User.Username)

	_, err = svc.Create(ctx, author.ID, campaign.CID, "   ")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = svc.Create(ctx, author.ID, 999, "orphan")
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestCommentListGatesHiddenCampaign(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewCommentService(env.comments, env.campaigns)
	ctx := context.Background()
	owner := env.createUser(t, "dungeonmaster", false)
	campaign := setupCampaign(t, env, owner, true)

	_, err := svc.Create(ctx, owner.ID, campaign.CID, "only for the initiated")
	require.NoError(t, err)

	_, err = svc.ListByCampaign(ctx, campaign.CID, 0, 20, 0)
	assertAppErrorCode(t, err, "UNAUTHORIZED")

	comments, err := svc.ListByCampaign(ctx, campaign.CID, owner.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentUpdateAuthorOnly(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewCommentService(env.comments, env.campaigns)
	ctx := context.Background()
	owner := env.createUser(t, "dungeonmaster", false)
	author := env.createUser(t, "wanderer", false)
	campaign := setupCampaign(t, env, owner, false)

	comment, err := svc.Create(ctx, author.ID, campaign.CID, "original")
	require.NoError(t, err)

	// The campaign owner cannot edit someone else's comment.
	_, err = svc.Update(ctx, comment.ID, owner.ID, "hijacked")
	assertAppErrorCode(t, err, "FORBIDDEN")

	updated, err := svc.Update(ctx, comment.ID, author.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestCommentDeletePermissionSet(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewCommentService(env.comments, env.campaigns)
	ctx := context.Background()
	owner := env.createUser(t, "dungeonmaster", false)
	author := env.createUser(t, "wanderer", false)
	bystander := env.createUser(t, "bystander", false)
	admin := env.createUser(t, "theadmin", true)
	campaign := setupCampaign(t, env, owner, false)

	newComment := func() uint {
		c, err := svc.Create(ctx, author.ID, campaign.CID, "deletable")
		require.NoError(t, err)
		return c.ID
	}

	// Bystander: rejected.
	id := newComment()
	err := svc.Delete(ctx, id, bystander.ID, false)
	assertAppErrorCode(t, err, "FORBIDDEN")

	// Author: allowed.
	require.NoError(t, svc.Delete(ctx, id, author.ID, false))

	// Campaign owner: allowed.
	id = newComment()
	require.NoError(t, svc.Delete(ctx, id, owner.ID, false))

	// Admin: allowed.
	id = newComment()
	require.NoError(t, svc.Delete(ctx, id, admin.ID, true))
}
