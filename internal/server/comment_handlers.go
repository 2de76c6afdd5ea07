package server

import (
	"tavern/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/comments/create
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		CID     uint   `json:"cid"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.CID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Campaign ID is required"))
	}

	comment, err := s.commentService.Create(c.Context(), currentUserID(c), req.CID, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetCampaignComments handles GET /api/comments/campaign/:cid
func (s *Server) GetCampaignComments(c *fiber.Ctx) error {
	cid, err := s.parseCID(c)
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 50)

	comments, serr := s.commentService.ListByCampaign(c.Context(), cid, viewerID, p.Limit, p.Offset)
	if serr != nil {
		return mapServiceError(c, serr)
	}
	return c.JSON(comments)
}

// UpdateComment handles PUT /api/comments/update
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment ID is required"))
	}

	comment, err := s.commentService.Update(c.Context(), req.ID, currentUserID(c), req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/delete
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	var req struct {
		ID uint `json:"id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment ID is required"))
	}

	if err := s.commentService.Delete(c.Context(), req.ID, currentUserID(c), currentIsAdmin(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
