package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestSetAndGetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "fixture:1", fixture{Name: "tavern", Count: 3}, time.Minute))

	var got fixture
	found, err := GetJSON(ctx, "fixture:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tavern", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetJSONMiss(t *testing.T) {
	setupMiniredis(t)

	var got fixture
	found, err := GetJSON(context.Background(), "fixture:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAsideFetchesOnceThenServesFromCache(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *fixture) func() error {
		return func() error {
			fetches++
			dest.Name = "fetched"
			return nil
		}
	}

	var first fixture
	require.NoError(t, Aside(ctx, "fixture:aside", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)

	var second fixture
	require.NoError(t, Aside(ctx, "fixture:aside", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should come from cache")
	assert.Equal(t, "fetched", second.Name)
}

func TestAsideWithoutClientFallsThrough(t *testing.T) {
	SetClient(nil)

	fetches := 0
	var got fixture
	err := Aside(context.Background(), "fixture:noredis", &got, time.Minute, func() error {
		fetches++
		got.Name = "direct"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "direct", got.Name)
}

func TestInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(7), fixture{Name: "stale"}, time.Minute))
	InvalidateUser(ctx, 7)

	var got fixture
	found, err := GetJSON(ctx, UserKey(7), &got)
	require.NoError(t, err)
	assert.False(t, found)
}
