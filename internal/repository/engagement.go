package repository

import (
	"context"

	"icarus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository stores one kind of (user, post) engagement record:
// likes or bookmarks.
type EngagementRepository interface {
	// Toggle removes the record when present and creates it otherwise,
	// returning the new state and the post's count as seen by the same
	// transaction.
	Toggle(ctx context.Context, userID, postID uint) (models.ToggleResult, error)
}

type engagementRepository struct {
	db     *gorm.DB
	table  string
	newRow func(userID, postID uint) interface{}
}

// NewLikeRepository returns the EngagementRepository backed by the likes table.
func NewLikeRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{
		db:    db,
		table: "likes",
		newRow: func(userID, postID uint) interface{} {
			return &models.Like{UserID: userID, PostID: postID}
		},
	}
}

// NewBookmarkRepository returns the EngagementRepository backed by the bookmarks table.
func NewBookmarkRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{
		db:    db,
		table: "bookmarks",
		newRow: func(userID, postID uint) interface{} {
			return &models.Bookmark{UserID: userID, PostID: postID}
		},
	}
}

func (r *engagementRepository) Toggle(ctx context.Context, userID, postID uint) (models.ToggleResult, error) {
	var result models.ToggleResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&posts).Error; err != nil {
			return err
		}
		if posts == 0 {
			return models.NewNotFoundError("Post", postID)
		}

		del := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(r.newRow(0, 0))
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected == 0 {
			// A concurrent toggle may have inserted the row first; the
			// unique index turns our insert into a no-op and the record
			// is on either way.
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoNothing: true,
			}).Create(r.newRow(userID, postID)).Error
			if isForeignKeyError(err) {
				return models.NewNotFoundError("User", userID)
			}
			if err != nil && !isUniqueConstraintError(err) {
				return err
			}
			result.On = true
		}

		return tx.Table(r.table).Where("post_id = ?", postID).Count(&result.Count).Error
	})
	if err != nil {
		return models.ToggleResult{}, wrapError(err)
	}
	return result, nil
}
