package repository

import (
	"context"
	"errors"

	"icarus/internal/models"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// WaitlistRepository persists early-access signups.
type WaitlistRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	List(ctx context.Context, limit int) ([]models.WaitlistEntry, error)
	Count(ctx context.Context) (int64, error)
}

type waitlistRepository struct {
	db *gorm.DB
}

// NewWaitlistRepository returns a new WaitlistRepository implementation.
func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) GetByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

func (r *waitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email already on the waitlist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// List returns entries newest first; limit <= 0 returns every entry.
func (r *waitlistRepository) List(ctx context.Context, limit int) ([]models.WaitlistEntry, error) {
	b := sq.Select("*").From("waitlist").OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var entries []models.WaitlistEntry
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *waitlistRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
