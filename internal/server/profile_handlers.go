package server

import (
	"tavern/internal/models"
	"tavern/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	viewerID, _ := s.optionalUserID(c)

	profile, err := s.profileService.GetProfile(c.Context(), username, viewerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles POST /api/profiles/:username/update
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.UpdateProfile(c.Context(), username, currentUserID(c), currentIsAdmin(c), input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetFollowers handles GET /api/profiles/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	username := c.Params("username")
	p := parsePagination(c, 50)

	followers, err := s.profileService.GetFollowers(c.Context(), username, currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(followers)
}
