package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tavern/internal/cache"
	"tavern/internal/config"
	"tavern/internal/database"
	"tavern/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testAdminPassphrase = "speak-friend-and-enter"

// newTestApp builds a full Fiber app over an in-memory database and a
// miniredis instance.
func newTestApp(t *testing.T) (*fiber.App, *Server) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		JWTSecret:       "test-secret-that-is-long-enough-for-hs256",
		Port:            "0",
		AdminPassphrase: testAdminPassphrase,
		ScribeProbeTTL:  time.Minute,
		FeatureFlags:    "scribe=on",
		Env:             "test",
	}

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return app, srv
}

func jsonRequest(t *testing.T, method, path string, body any, token string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, method, path, body, token), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func doJSONList(t *testing.T, app *fiber.App, method, path string, token string) (int, []map[string]any) {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, method, path, nil, token), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp.StatusCode, decoded
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, app *fiber.App, username string, passphrase string) string {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"username":         username,
		"email":            username + "@tavern.example",
		"password":         "password123",
		"admin_passphrase": passphrase,
	}, "")
	require.Equal(t, fiber.StatusCreated, status, "register %s: %v", username, body)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

// createCampaign posts a campaign and returns its cid.
func createCampaign(t *testing.T, app *fiber.App, token, title string, hidden bool) uint {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/campaigns/create", map[string]any{
		"title":       title,
		"description": "A hook for " + title,
		"content":     "The long body of " + title,
		"is_hidden":   hidden,
	}, token)
	require.Equal(t, fiber.StatusCreated, status, "create campaign: %v", body)
	cid, ok := body["cid"].(float64)
	require.True(t, ok)
	return uint(cid)
}
