package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"icarus/internal/cache"
	"icarus/internal/middleware"
	"icarus/internal/models"
	"icarus/internal/observability"
	"icarus/internal/repository"
)

const maxMediaURLLength = 500

type PostService struct {
	postRepo     repository.PostRepository
	likeRepo     repository.EngagementRepository
	bookmarkRepo repository.EngagementRepository
	now          func() time.Time
}

type CreatePostInput struct {
	UserID    uint
	Content   string
	Category  string
	MediaType string
	MediaURL  string
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.EngagementRepository,
	bookmarkRepo repository.EngagementRepository,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		bookmarkRepo: bookmarkRepo,
		now:          time.Now,
	}
}

// CreatePost publishes a post and returns it as its author sees it.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (models.PostView, error) {
	content := strings.TrimSpace(in.Content)
	mediaURL := models.StringPtr(in.MediaURL)
	if content == "" && mediaURL == nil {
		return models.PostView{}, models.NewValidationError("Post must have content or media")
	}
	if mediaURL != nil && len(*mediaURL) > maxMediaURLLength {
		return models.PostView{}, models.NewValidationError("Media URL too long (max 500 characters)")
	}

	mediaType := strings.ToLower(strings.TrimSpace(in.MediaType))
	if mediaType == "" {
		mediaType = models.MediaTypeText
	}

	post := &models.Post{
		UserID:    in.UserID,
		Content:   content,
		MediaType: mediaType,
		MediaURL:  mediaURL,
		Category:  models.CoerceCategory(strings.ToLower(strings.TrimSpace(in.Category))),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.PostView{}, err
	}

	middleware.PostsCreated.WithLabelValues(string(post.Category)).Inc()
	cache.InvalidateCategoryStats(ctx, in.UserID)

	created, err := s.postRepo.GetByID(ctx, post.ID, in.UserID)
	if err != nil {
		return models.PostView{}, err
	}
	return ProjectPost(created, in.UserID, s.now()), nil
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return models.PostView{}, err
	}
	return ProjectPost(post, viewerID, s.now()), nil
}

// DeletePost removes a post owned by userID together with its engagement.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	cache.InvalidateCategoryStats(ctx, post.UserID)

	middleware.Logger.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(postID)))
	return nil
}

func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	return s.toggle(ctx, "ToggleLike", "like", s.likeRepo, userID, postID)
}

func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	return s.toggle(ctx, "ToggleBookmark", "bookmark", s.bookmarkRepo, userID, postID)
}

func (s *PostService) toggle(
	ctx context.Context,
	method, kind string,
	repo repository.EngagementRepository,
	userID, postID uint,
) (result models.ToggleResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", method)
	defer func() { observability.EndSpan(span, err) }()

	result, err = repo.Toggle(ctx, userID, postID)
	if err != nil {
		return result, err
	}
	middleware.EngagementToggles.WithLabelValues(kind, middleware.ToggleState(result.On)).Inc()
	return result, nil
}
