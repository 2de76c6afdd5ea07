package server

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postComment(t *testing.T, app *fiber.App, token string, cid uint, content string) uint {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/comments/create", map[string]any{
		"cid": cid, "content": content,
	}, token)
	require.Equal(t, fiber.StatusCreated, status, "create comment: %v", body)
	return uint(body["id"].(float64))
}

func TestCreateComment(t *testing.T) {
	app, _ := newTestApp(t)
	ownerToken := registerUser(t, app, "dungeonmaster", "")
	commenterToken := registerUser(t, app, "wanderer", "")
	cid := createCampaign(t, app, ownerToken, "Quest", false)

	// Requires auth.
	status, _ := doJSON(t, app, "POST", "/api/comments/create", map[string]any{
		"cid": cid, "content": "nice",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Any authenticated user may comment, campaign ownership not required.
	status, body := doJSON(t, app, "POST", "/api/comments/create", map[string]any{
		"cid": cid, "content": "What a tale!",
	}, commenterToken)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "What a tale!", body["content"])

	// Blank content rejected.
	status, _ = doJSON(t, app, "POST", "/api/comments/create", map[string]any{
		"cid": cid, "content": "   ",
	}, commenterToken)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// Unknown campaign.
	status, _ = doJSON(t, app, "POST", "/api/comments/create", map[string]any{
		"cid": 999, "content": "lost",
	}, commenterToken)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListCommentsMirrorsCampaignGating(t *testing.T) {
	app, _ := newTestApp(t)
	ownerToken := registerUser(t, app, "dungeonmaster", "")
	hiddenCID := createCampaign(t, app, ownerToken, "Secret Quest", true)
	postComment(t, app, ownerToken, hiddenCID, "for members only")

	path := fmt.Sprintf("/api/comments/campaign/%d", hiddenCID)

	status, _ := doJSON(t, app, "GET", path, nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status, "hidden campaign comments are gated")

	status, comments := doJSONList(t, app, "GET", path, ownerToken)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, comments, 1)
}

func TestCommentPayloadsOmitAuthorEmailAndCampaign(t *testing.T) {
	app, _ := newTestApp(t)
	ownerToken := registerUser(t, app, "dungeonmaster", "")
	cid := createCampaign(t, app, ownerToken, "Quest", false)
	postComment(t, app, ownerToken, cid, "well met")

	status, comments := doJSONList(t, app, "GET", fmt.Sprintf("/api/comments/campaign/%d", cid), "")
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, comments, 1)

	author := comments[0]["user"].(map[string]any)
	assert.Equal(t, "dungeonmaster", author["username"])
	assert.NotContains(t, author, "email")
	assert.NotContains(t, comments[0], "campaign", "no zero-value campaign object rides along")
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	app, _ := newTestApp(t)
	ownerToken := registerUser(t, app, "dungeonmaster", "")
	authorToken := registerUser(t, app, "wanderer", "")
	cid := createCampaign(t, app, ownerToken, "Quest", false)
	commentID := postComment(t, app, authorToken, cid, "original")

	// Campaign owner cannot edit another user's comment.
	status, _ := doJSON(t, app, "PUT", "/api/comments/update", map[string]any{
		"id": commentID, "content": "hijacked",
	}, ownerToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := doJSON(t, app, "PUT", "/api/comments/update", map[string]any{
		"id": commentID, "content": "edited",
	}, authorToken)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "edited", body["content"])
}

func TestDeleteCommentPermissionSet(t *testing.T) {
	app, _ := newTestApp(t)
	ownerToken := registerUser(t, app, "dungeonmaster", "")
	authorToken := registerUser(t, app, "wanderer", "")
	bystanderToken := registerUser(t, app, "bystander", "")
	adminToken := registerUser(t, app, "theadmin", testAdminPassphrase)
	cid := createCampaign(t, app, ownerToken, "Quest", false)

	del := func(id uint, token string) int {
		status, _ := doJSON(t, app, "DELETE", "/api/comments/delete", map[string]any{"id": id}, token)
		return status
	}

	// Bystander rejected; exactly {author, campaign owner, admin} may delete.
	id := postComment(t, app, authorToken, cid, "one")
	assert.Equal(t, fiber.StatusForbidden, del(id, bystanderToken))
	assert.Equal(t, fiber.StatusOK, del(id, authorToken))

	id = postComment(t, app, authorToken, cid, "two")
	assert.Equal(t, fiber.StatusOK, del(id, ownerToken))

	id = postComment(t, app, authorToken, cid, "three")
	assert.Equal(t, fiber.StatusOK, del(id, adminToken))
}
