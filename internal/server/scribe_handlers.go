package server

import (
	"strings"

	"tavern/internal/models"
	"tavern/internal/scribe"

	"github.com/gofiber/fiber/v2"
)

// ScribeStatus handles GET /api/scribe/status. A down or unconfigured scribe
// is not an error, it just reports unavailable.
func (s *Server) ScribeStatus(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	available := s.flags.Enabled("scribe", viewerID) && s.scribe.Available(c.Context())
	return c.JSON(scribe.Status{Available: available})
}

// ScribeGenerate handles POST /api/scribe/generate
func (s *Server) ScribeGenerate(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Prompt is required"))
	}

	if !s.flags.Enabled("scribe", currentUserID(c)) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: "UNAVAILABLE", Message: "Scribe is unavailable"})
	}

	draft, err := s.scribe.Generate(c.Context(), req.Prompt)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: "UNAVAILABLE", Message: "Scribe is unavailable", Err: err})
	}
	return c.JSON(draft)
}
