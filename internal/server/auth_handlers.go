package server

import (
	"icarus/internal/middleware"
	"icarus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Email    string `json:"email" form:"email" validate:"required,max=120"`
	Password string `json:"password" form:"password" validate:"required"`
	Name     string `json:"name" form:"name" validate:"max=100"`
	Phone    string `json:"phone" form:"phone" validate:"max=20"`
	Theme    string `json:"theme" form:"theme"`
}

type signinRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Remember bool   `json:"remember" form:"remember"`
}

// Signup handles POST /api/signup
// @Summary Sign up
// @Description Register an account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Request body"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		middleware.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		return nil
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Theme:    req.Theme,
	})
	if err != nil {
		middleware.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		return respondError(c, err)
	}
	middleware.AuthAttempts.WithLabelValues("signup", "success").Inc()

	return s.signIn(c, fiber.StatusCreated, user, false)
}

// Signin handles POST /api/signin
// @Summary Sign in
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signinRequest true "Request body"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /signin [post]
func (s *Server) Signin(c *fiber.Ctx) error {
	var req signinRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.signIn(c, fiber.StatusOK, user, req.Remember)
}

// Signout handles POST /api/signout
// @Summary Sign out
// @Description Revoke the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /signout [post]
func (s *Server) Signout(c *fiber.Ctx) error {
	if err := s.authService.Revoke(c.UserContext(), currentSession(c)); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Signed out",
	})
}
