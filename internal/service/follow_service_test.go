package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFollowAndUnfollow(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewFollowService(env.follows, env.users)
	ctx := context.Background()
	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)

	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))

	exists, err := env.follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, "bob"))
	exists, err = env.follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFollowErrors(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewFollowService(env.follows, env.users)
	ctx := context.Background()
	alice := env.createUser(t, "alice", false)
	env.createUser(t, "bob", false)

	// Unknown target.
	err := svc.Follow(ctx, alice.ID, "nobody")
	assertAppErrorCode(t, err, "NOT_FOUND")

	// Self-follow.
	err = svc.Follow(ctx, alice.ID, "alice")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	// Duplicate edge.
	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))
	err = svc.Follow(ctx, alice.ID, "bob")
	assertAppErrorCode(t, err, "CONFLICT")
}

func TestUnfollowErrors(t *testing.T) {
	env := newServiceEnv(t)
	svc := NewFollowService(env.follows, env.users)
	ctx := context.Background()
	alice := env.createUser(t, "alice", false)
	env.createUser(t, "bob", false)

	// Absent edge.
	err := svc.Unfollow(ctx, alice.ID, "bob")
	assertAppErrorCode(t, err, "CONFLICT")

	err = svc.Unfollow(ctx, alice.ID, "nobody")
	assertAppErrorCode(t, err, "NOT_FOUND")

	err = svc.Unfollow(ctx, alice.ID, "alice")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}
