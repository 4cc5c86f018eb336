package service

import (
	"context"
	"time"

	"icarus/internal/cache"
	"icarus/internal/models"
	"icarus/internal/repository"
)

const (
	DefaultFeedLimit = 50
	DefaultPerPage   = 20
	MaxPerPage       = 100

	dashboardRecentPosts = 5
)

// FeedService serves the read side: feeds, pages, author listings and
// bookmarks, all projected for the viewer.
type FeedService struct {
	postRepo  repository.PostRepository
	feedLimit int
	pageSize  int
	now       func() time.Time
}

type ListPostsInput struct {
	ViewerID uint
	Category string
	Page     int
	PerPage  int
}

// Dashboard summarizes one user's posting activity.
type Dashboard struct {
	Stats       models.CategoryStats `json:"stats"`
	RecentPosts []models.PostView    `json:"recent_posts"`
}

// NewFeedService builds a FeedService. Non-positive limits fall back to the defaults.
func NewFeedService(postRepo repository.PostRepository, feedLimit, pageSize int) *FeedService {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	if feedLimit > MaxPerPage {
		feedLimit = MaxPerPage
	}
	if pageSize <= 0 || pageSize > MaxPerPage {
		pageSize = DefaultPerPage
	}
	return &FeedService{
		postRepo:  postRepo,
		feedLimit: feedLimit,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

// ListFeed returns the newest posts. limit <= 0 uses the configured feed size.
func (s *FeedService) ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]models.PostView, error) {
	if limit <= 0 {
		limit = s.feedLimit
	}
	if limit > MaxPerPage {
		limit = MaxPerPage
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postRepo.List(ctx, "", limit, offset, viewerID)
	if err != nil {
		return nil, err
	}
	return ProjectPosts(posts, viewerID, s.now()), nil
}

// ListPosts returns one page of posts, optionally filtered by category.
// A page past the end is empty but still reports the full total.
func (s *FeedService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	perPage := in.PerPage
	if perPage <= 0 {
		perPage = s.pageSize
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	page := in.Page
	if page < 1 {
		page = 1
	}

	category := models.Category(in.Category)

	total, err := s.postRepo.Count(ctx, category)
	if err != nil {
		return nil, err
	}
	pages := pageCount(total, perPage)

	// Pages past the end skip the query, which also keeps the offset
	// from overflowing for absurd page numbers.
	var posts []*models.Post
	if page <= pages {
		posts, err = s.postRepo.List(ctx, category, perPage, (page-1)*perPage, in.ViewerID)
		if err != nil {
			return nil, err
		}
	}

	return &models.PostPage{
		Posts:       ProjectPosts(posts, in.ViewerID, s.now()),
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		PerPage:     perPage,
	}, nil
}

func pageCount(total int64, perPage int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// ListByAuthor returns authorID's posts newest first; limit <= 0 returns all.
func (s *FeedService) ListByAuthor(ctx context.Context, authorID, viewerID uint, limit int) ([]models.PostView, error) {
	posts, err := s.postRepo.GetByUserID(ctx, authorID, limit, viewerID)
	if err != nil {
		return nil, err
	}
	return ProjectPosts(posts, viewerID, s.now()), nil
}

func (s *FeedService) ListBookmarkedBy(ctx context.Context, userID, viewerID uint) ([]models.PostView, error) {
	posts, err := s.postRepo.ListBookmarkedBy(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}
	return ProjectPosts(posts, viewerID, s.now()), nil
}

func (s *FeedService) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	var stats models.CategoryStats
	err := cache.Aside(ctx, cache.CategoryStatsKey(userID), &stats, cache.CategoryStatsTTL, func() error {
		var err error
		stats, err = s.postRepo.CategoryStats(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	recent, err := s.ListByAuthor(ctx, userID, userID, dashboardRecentPosts)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: stats, RecentPosts: recent}, nil
}
