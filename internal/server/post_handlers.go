package server

import (
	"icarus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content   string `json:"content" form:"content" validate:"max=5000"`
	Category  string `json:"category" form:"category"`
	MediaType string `json:"media_type" form:"media_type" validate:"max=20"`
	MediaURL  string `json:"media_url" form:"media_url"`
}

// ListPosts handles GET /api/posts?category=&page=&per_page=
// @Summary List posts
// @Description Paged posts, newest first, optionally filtered by category
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category filter"
// @Param page query int false "Page number"
// @Param per_page query int false "Posts per page (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	p := parsePagination(c)
	page, err := s.feedService.ListPosts(c.UserContext(), service.ListPostsInput{
		ViewerID: viewerID(c),
		Category: c.Query("category"),
		Page:     p.Page,
		PerPage:  p.PerPage,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"posts":        page.Posts,
		"total":        page.Total,
		"pages":        page.Pages,
		"current_page": page.CurrentPage,
		"per_page":     page.PerPage,
	})
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Publish a post with text and/or media
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Request body"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:    viewerID(c),
		Content:   req.Content,
		Category:  req.Category,
		MediaType: req.MediaType,
		MediaURL:  req.MediaURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "post": post})
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Description Get one post as seen by the viewer
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "post": post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Delete one of your own posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id, viewerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Post deleted"})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle like
// @Description Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.UserContext(), viewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"liked":   result.On,
		"likes":   result.Count,
	})
}

// BookmarkPost handles POST /api/posts/:id/bookmark
// @Summary Toggle bookmark
// @Description Bookmark or unbookmark a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/bookmark [post]
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleBookmark(c.UserContext(), viewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"bookmarked": result.On,
		"bookmarks":  result.Count,
	})
}

// GetUserPosts handles GET /api/users/:id/posts?limit=
// @Summary User posts
// @Description A user's posts, newest first
// @Tags posts
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Maximum posts (0 = all)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	author, err := s.userService.GetUserView(ctx, authorID)
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.feedService.ListByAuthor(ctx, authorID, viewerID(c), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": author, "posts": posts})
}
