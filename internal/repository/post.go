package repository

import (
	"context"
	"errors"

	"icarus/internal/models"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
// Every read fills the computed counts and, for a non-zero viewer, the
// viewer's like and bookmark flags.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, category models.Category, limit, offset int, viewerID uint) ([]*models.Post, error)
	Count(ctx context.Context, category models.Category) (int64, error)
	GetByUserID(ctx context.Context, userID uint, limit int, viewerID uint) ([]*models.Post, error)
	ListBookmarkedBy(ctx context.Context, userID uint, viewerID uint) ([]*models.Post, error)
	CategoryStats(ctx context.Context, userID uint) (models.CategoryStats, error)
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const newestFirst = "posts.created_at DESC, posts.id DESC"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("User", post.UserID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// List returns posts newest first. An empty category lists every post.
func (r *postRepository) List(ctx context.Context, category models.Category, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.applyPostDetails(r.db.WithContext(ctx), viewerID).Preload("User")
	if category != "" {
		q = q.Where("posts.category = ?", category)
	}
	err := q.Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, category models.Category) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// GetByUserID returns one author's posts newest first; limit <= 0 returns all.
func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Order(newestFirst)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListBookmarkedBy returns the posts userID bookmarked, most recently bookmarked first.
func (r *postRepository) ListBookmarkedBy(ctx context.Context, userID uint, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.user_id = ?", userID).
		Order("bookmarks.created_at DESC, bookmarks.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

type categoryCount struct {
	Category models.Category
	N        int64
}

// CategoryStats counts userID's posts per category in one grouped query.
func (r *postRepository) CategoryStats(ctx context.Context, userID uint) (models.CategoryStats, error) {
	var stats models.CategoryStats

	query, args, err := sq.Select("category", "COUNT(*) AS n").
		From("posts").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("category").
		ToSql()
	if err != nil {
		return stats, models.NewInternalError(err)
	}

	var rows []categoryCount
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return stats, models.NewInternalError(err)
	}

	for _, row := range rows {
		stats.Total += row.N
		switch row.Category {
		case models.CategoryArt:
			stats.Art = row.N
		case models.CategoryMusic:
			stats.Music = row.N
		case models.CategoryFilm:
			stats.Film = row.N
		}
	}
	return stats, nil
}

// Delete removes the post with its likes and bookmarks in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	return wrapError(err)
}

// applyPostDetails adds subqueries to fetch counts and viewer flags in a single query.
// An anonymous viewer gets constant false flags without touching the engagement tables.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.post_id = posts.id) AS bookmarks_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", "+
			"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked, "+
			"EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.post_id = posts.id AND bookmarks.user_id = ?) AS bookmarked",
			viewerID, viewerID)
	}

	return db.Select(selectQuery + ", false AS liked, false AS bookmarked")
}
