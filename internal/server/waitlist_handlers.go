package server

import (
	"icarus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type waitlistRequest struct {
	Email  string `json:"email" form:"email" validate:"required"`
	Name   string `json:"name" form:"name" validate:"max=100"`
	Role   string `json:"role" form:"role" validate:"max=50"`
	Source string `json:"source" form:"source" validate:"max=50"`
}

// JoinWaitlist handles POST /waitlist/submit. Submitting an address that is
// already on the list succeeds without adding it again.
func (s *Server) JoinWaitlist(c *fiber.Ctx) error {
	var req waitlistRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	_, created, err := s.waitlistService.Join(c.UserContext(), service.JoinWaitlistInput{
		Email:  req.Email,
		Name:   req.Name,
		Role:   req.Role,
		Source: req.Source,
	})
	if err != nil {
		return respondError(c, err)
	}

	if !created {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "You're already on the waitlist!",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Welcome to the waitlist!",
	})
}

// ListWaitlist handles GET /api/waitlist
// @Summary List waitlist
// @Description Waitlist entries, newest first, with a count
// @Tags waitlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /waitlist [get]
func (s *Server) ListWaitlist(c *fiber.Ctx) error {
	entries, count, err := s.waitlistService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"entries": entries,
		"count":   count,
	})
}
