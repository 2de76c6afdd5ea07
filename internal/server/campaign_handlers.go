package server

import (
	"tavern/internal/models"
	"tavern/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCampaign handles POST /api/campaigns/create
func (s *Server) CreateCampaign(c *fiber.Ctx) error {
	var input service.CreateCampaignInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	campaign, err := s.campaignService.Create(c.Context(), currentUserID(c), input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// GetCampaigns handles GET /api/campaigns
func (s *Server) GetCampaigns(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	followingOnly := c.QueryBool("following", false)
	p := parsePagination(c, 20)

	// Anonymous viewers cannot have a following feed.
	if viewerID == 0 {
		followingOnly = false
	}

	campaigns, err := s.campaignService.List(c.Context(), viewerID, followingOnly, p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(campaigns)
}

// SearchCampaigns handles GET /api/campaigns/search?query=
func (s *Server) SearchCampaigns(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	campaigns, err := s.campaignService.Search(c.Context(), c.Query("query"), viewerID, p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(campaigns)
}

// GetCampaign handles GET /api/campaigns/:cid
func (s *Server) GetCampaign(c *fiber.Ctx) error {
	cid, err := s.parseCID(c)
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	campaign, serr := s.campaignService.Get(c.Context(), cid, viewerID)
	if serr != nil {
		return mapServiceError(c, serr)
	}
	return c.JSON(campaign)
}

// UpdateCampaign handles PUT /api/campaigns/:cid
func (s *Server) UpdateCampaign(c *fiber.Ctx) error {
	cid, err := s.parseCID(c)
	if err != nil {
		return nil
	}

	var input service.UpdateCampaignInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	campaign, serr := s.campaignService.Update(c.Context(), cid, currentUserID(c), input)
	if serr != nil {
		return mapServiceError(c, serr)
	}
	return c.JSON(campaign)
}

// DeleteCampaign handles DELETE /api/campaigns/:cid
func (s *Server) DeleteCampaign(c *fiber.Ctx) error {
	cid, err := s.parseCID(c)
	if err != nil {
		return nil
	}

	if serr := s.campaignService.Delete(c.Context(), cid, currentUserID(c), currentIsAdmin(c)); serr != nil {
		return mapServiceError(c, serr)
	}
	return c.JSON(fiber.Map{"message": "Campaign deleted"})
}

// ToggleUpvote handles POST /api/campaigns/:cid/upvote
func (s *Server) ToggleUpvote(c *fiber.Ctx) error {
	cid, err := s.parseCID(c)
	if err != nil {
		return nil
	}

	result, serr := s.campaignService.ToggleUpvote(c.Context(), cid, currentUserID(c))
	if serr != nil {
		return mapServiceError(c, serr)
	}
	return c.JSON(result)
}
