package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"username": "frodo",
		"email":    "frodo@tavern.example",
		"password": "password123",
	}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "frodo", user["username"])
	assert.Equal(t, false, user["is_admin"])
	assert.NotContains(t, user, "password", "password hash must never be serialized")
}

func TestRegisterWithAdminPassphrase(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"username":         "gandalf",
		"email":            "gandalf@tavern.example",
		"password":         "password123",
		"admin_passphrase": testAdminPassphrase,
	}, "")
	require.Equal(t, fiber.StatusCreated, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, true, user["is_admin"])
}

func TestRegisterWrongPassphraseIsNotAdmin(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"username":         "saruman",
		"email":            "saruman@tavern.example",
		"password":         "password123",
		"admin_passphrase": "mellon",
	}, "")
	require.Equal(t, fiber.StatusCreated, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, false, user["is_admin"])
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"non-alphanumeric username", map[string]string{
			"username": "frodo_baggins", "email": "a@b.example", "password": "password123"}},
		{"short password", map[string]string{
			"username": "frodo", "email": "a@b.example", "password": "short"}},
		{"bad email", map[string]string{
			"username": "frodo", "email": "nope", "password": "password123"}},
		{"missing fields", map[string]string{"username": "frodo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, "POST", "/api/auth/register", tt.body, "")
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "frodo", "")

	// Same email.
	status, _ := doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"username": "frodo2", "email": "frodo@tavern.example", "password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusConflict, status)

	// Same username.
	status, _ = doJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"username": "frodo", "email": "other@tavern.example", "password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestLoginUniformError(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "frodo", "")

	status, wrongPassword := doJSON(t, app, "POST", "/api/auth/login", map[string]string{
		"email": "frodo@tavern.example", "password": "wrong-password",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, unknownEmail := doJSON(t, app, "POST", "/api/auth/login", map[string]string{
		"email": "nobody@tavern.example", "password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	assert.Equal(t, wrongPassword["error"], unknownEmail["error"],
		"wrong password and unknown email must be indistinguishable")
}

func TestLoginSuccess(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "frodo", "")

	status, body := doJSON(t, app, "POST", "/api/auth/login", map[string]string{
		"email": "frodo@tavern.example", "password": "password123",
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])
}

func TestFollowRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	aliceToken := registerUser(t, app, "alice", "")
	registerUser(t, app, "bob", "")

	// Unauthenticated.
	status, _ := doJSON(t, app, "POST", "/api/auth/add-follower", map[string]string{"username": "bob"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Follow bob.
	status, _ = doJSON(t, app, "POST", "/api/auth/add-follower", map[string]string{"username": "bob"}, aliceToken)
	assert.Equal(t, fiber.StatusOK, status)

	// Duplicate edge.
	status, _ = doJSON(t, app, "POST", "/api/auth/add-follower", map[string]string{"username": "bob"}, aliceToken)
	assert.Equal(t, fiber.StatusConflict, status)

	// Self-follow.
	status, _ = doJSON(t, app, "POST", "/api/auth/add-follower", map[string]string{"username": "alice"}, aliceToken)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// Unknown target.
	status, _ = doJSON(t, app, "POST", "/api/auth/add-follower", map[string]string{"username": "nobody"}, aliceToken)
	assert.Equal(t, fiber.StatusNotFound, status)

	// Unfollow, then unfollow again.
	status, _ = doJSON(t, app, "POST", "/api/auth/remove-follower", map[string]string{"username": "bob"}, aliceToken)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, "POST", "/api/auth/remove-follower", map[string]string{"username": "bob"}, aliceToken)
	assert.Equal(t, fiber.StatusConflict, status)
}
