package server

import (
	"icarus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Email    *string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type setThemeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

type deleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// GetCurrentUser handles GET /api/user
// @Summary Current user
// @Description Get the signed-in user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /user [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	view, err := s.userService.GetUserView(c.UserContext(), viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": view})
}

// UpdateProfile handles PUT /api/user/profile
// @Summary Update profile
// @Description Update name, username, bio or email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Request body"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /user/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   viewerID(c),
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
		Email:    req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user.View()})
}

// ChangePassword handles PUT /api/user/password
// @Summary Change password
// @Description Change the account password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordRequest true "Request body"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/password [put]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.userService.ChangePassword(c.UserContext(), viewerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password updated"})
}

// SetTheme handles PUT /api/user/theme
// @Summary Set theme
// @Description Set the display theme preference
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body setThemeRequest true "Request body"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/theme [put]
func (s *Server) SetTheme(c *fiber.Ctx) error {
	var req setThemeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.SetTheme(c.UserContext(), viewerID(c), req.Theme)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "theme": user.Theme})
}

// DeleteAccount handles DELETE /api/user/delete
// @Summary Delete account
// @Description Delete the account with its posts, likes and bookmarks
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body deleteAccountRequest true "Request body"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/delete [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	var req deleteAccountRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	if err := s.userService.DeleteAccount(ctx, viewerID(c), req.Password); err != nil {
		return respondError(c, err)
	}

	// The account is gone either way; a failed revocation only leaves a
	// token that resolves to no user.
	_ = s.authService.Revoke(ctx, currentSession(c))
	s.clearSessionCookie(c)

	return c.JSON(fiber.Map{"success": true, "message": "Account deleted"})
}
