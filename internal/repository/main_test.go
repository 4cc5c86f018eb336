package repository

import (
	"testing"
	"time"

	"icarus/internal/database"
	"icarus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a migrated private in-memory SQLite database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// setupMockDB returns a gorm handle speaking the PostgreSQL dialect to sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Username:     models.StringPtr(username),
		PasswordHash: "hash",
		Theme:        models.ThemeEarth,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, author *models.User, content string, category models.Category, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:    author.ID,
		Content:   content,
		MediaType: models.MediaTypeText,
		Category:  category,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Omit("User").Create(p).Error)
	return p
}
