package server

import (
	"icarus/internal/models"

	"github.com/gofiber/fiber/v2"
)

// pageContext loads the signed-in user and the theme the page renders in:
// the :theme route parameter when present, otherwise the user's preference.
func (s *Server) pageContext(c *fiber.Ctx) (*models.User, models.Theme, error) {
	user, err := s.userService.GetUser(c.UserContext(), viewerID(c))
	if err != nil {
		return nil, "", err
	}
	return user, models.ResolveDisplayTheme(c.Params("theme"), user.Theme), nil
}

// Feed handles GET /api/feed/:theme? and GET /api/explore/:theme?
// @Summary Feed
// @Description Newest posts with the resolved display theme
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum posts"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /feed [get]
// @Router /explore [get]
func (s *Server) Feed(c *fiber.Ctx) error {
	user, theme, err := s.pageContext(c)
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.feedService.ListFeed(c.UserContext(), user.ID, c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"theme":   theme,
		"user":    user.View(),
		"posts":   posts,
	})
}

// Bookmarks handles GET /api/bookmarks/:theme?
// @Summary Bookmarks
// @Description Posts bookmarked by the signed-in user
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /bookmarks [get]
func (s *Server) Bookmarks(c *fiber.Ctx) error {
	user, theme, err := s.pageContext(c)
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.feedService.ListBookmarkedBy(c.UserContext(), user.ID, user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"theme":   theme,
		"user":    user.View(),
		"posts":   posts,
	})
}

// Profile handles GET /api/profile/:theme?
// @Summary Profile
// @Description Posts by the signed-in user
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /profile [get]
func (s *Server) Profile(c *fiber.Ctx) error {
	user, theme, err := s.pageContext(c)
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.feedService.ListByAuthor(c.UserContext(), user.ID, user.ID, 0)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"theme":   theme,
		"user":    user.View(),
		"posts":   posts,
	})
}

// Dashboard handles GET /api/dashboard
// @Summary Dashboard
// @Description Post counts per category and the five most recent posts
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /dashboard [get]
func (s *Server) Dashboard(c *fiber.Ctx) error {
	user, theme, err := s.pageContext(c)
	if err != nil {
		return respondError(c, err)
	}

	dash, err := s.feedService.Dashboard(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"theme":        theme,
		"user":         user.View(),
		"stats":        dash.Stats,
		"recent_posts": dash.RecentPosts,
	})
}
