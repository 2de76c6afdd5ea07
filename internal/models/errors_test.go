package models

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondInternal(t *testing.T) map[string]any {
	t.Helper()
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError,
			NewInternalError(errors.New("pq: connection refused")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestInternalErrorHidesDetailsOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	body := respondInternal(t)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, body, "details", "driver errors must not leak to clients")
}

func TestInternalErrorShowsDetailsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	body := respondInternal(t)
	assert.Equal(t, "pq: connection refused", body["details"])
}
