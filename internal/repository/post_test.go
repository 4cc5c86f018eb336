package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"icarus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{UserID: 1, Content: "hello", MediaType: models.MediaTypeText, Category: models.CategoryArt}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Create_UnknownAuthor(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
			WillReturnError(&pgconn.PgError{Code: "23503", Message: "insert or update violates foreign key constraint"})
		mock.ExpectRollback()

		err := NewPostRepository(db).Create(context.Background(), &models.Post{UserID: 7, Content: "x"})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sqlite", func(t *testing.T) {
		db := newTestDB(t)
		err := NewPostRepository(db).Create(context.Background(), &models.Post{UserID: 999, Content: "x"})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}

func TestPostRepository_GetByID_ComputesViewerFlags(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "a@x.com", "a")
	viewer := seedUser(t, db, "b@x.com", "b")
	post := seedPost(t, db, author, "hello", models.CategoryArt, time.Now())

	require.NoError(t, db.Create(&models.Like{UserID: viewer.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: author.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Bookmark{UserID: viewer.ID, PostID: post.ID}).Error)

	got, err := repo.GetByID(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, 2, got.LikesCount)
	assert.Equal(t, 1, got.BookmarksCount)
	assert.True(t, got.Liked)
	assert.True(t, got.Bookmarked)
	assert.Equal(t, "a@x.com", got.User.Email)

	anon, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, anon.LikesCount)
	assert.False(t, anon.Liked)
	assert.False(t, anon.Bookmarked)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), 404, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_ListOrderingAndCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "a@x.com", "a")
	base := time.Now().Add(-time.Hour)
	oldest := seedPost(t, db, author, "one", models.CategoryArt, base)
	middle := seedPost(t, db, author, "two", models.CategoryMusic, base.Add(time.Minute))
	newest := seedPost(t, db, author, "three", models.CategoryArt, base.Add(2*time.Minute))

	all, err := repo.List(ctx, "", 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{newest.ID, middle.ID, oldest.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	art, err := repo.List(ctx, models.CategoryArt, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, art, 2)
	assert.Equal(t, newest.ID, art[0].ID)

	page, err := repo.List(ctx, "", 2, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, oldest.ID, page[0].ID)

	beyond, err := repo.List(ctx, "", 2, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	total, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	music, err := repo.Count(ctx, models.CategoryMusic)
	require.NoError(t, err)
	assert.Equal(t, int64(1), music)

	unknown, err := repo.Count(ctx, models.Category("poetry"))
	require.NoError(t, err)
	assert.Zero(t, unknown)
}

func TestPostRepository_GetByUserID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a@x.com", "a")
	b := seedUser(t, db, "b@x.com", "b")
	now := time.Now()
	seedPost(t, db, a, "a1", models.CategoryArt, now.Add(-2*time.Minute))
	latest := seedPost(t, db, a, "a2", models.CategoryFilm, now.Add(-time.Minute))
	seedPost(t, db, b, "b1", models.CategoryArt, now)

	posts, err := repo.GetByUserID(ctx, a.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, latest.ID, posts[0].ID)

	limited, err := repo.GetByUserID(ctx, a.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPostRepository_ListBookmarkedBy_OrdersByBookmarkTime(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "a@x.com", "a")
	reader := seedUser(t, db, "r@x.com", "r")
	now := time.Now()
	older := seedPost(t, db, author, "older", models.CategoryArt, now.Add(-time.Hour))
	newer := seedPost(t, db, author, "newer", models.CategoryArt, now)

	// Bookmark the newer post first, then the older one.
	require.NoError(t, db.Create(&models.Bookmark{UserID: reader.ID, PostID: newer.ID, CreatedAt: now.Add(-time.Minute)}).Error)
	require.NoError(t, db.Create(&models.Bookmark{UserID: reader.ID, PostID: older.ID, CreatedAt: now}).Error)

	posts, err := repo.ListBookmarkedBy(ctx, reader.ID, reader.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, older.ID, posts[0].ID)
	assert.Equal(t, newer.ID, posts[1].ID)
	assert.True(t, posts[0].Bookmarked)
	assert.Equal(t, 1, posts[0].BookmarksCount)

	none, err := repo.ListBookmarkedBy(ctx, author.ID, author.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_CategoryStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a@x.com", "a")
	other := seedUser(t, db, "o@x.com", "o")
	now := time.Now()
	seedPost(t, db, a, "1", models.CategoryArt, now)
	seedPost(t, db, a, "2", models.CategoryArt, now)
	seedPost(t, db, a, "3", models.CategoryFilm, now)
	seedPost(t, db, other, "4", models.CategoryMusic, now)

	stats, err := repo.CategoryStats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryStats{Total: 3, Art: 2, Music: 0, Film: 1}, stats)
}

func TestPostRepository_DeleteCascadesEngagement(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a@x.com", "a")
	b := seedUser(t, db, "b@x.com", "b")
	post := seedPost(t, db, a, "bye", models.CategoryArt, time.Now())
	keep := seedPost(t, db, a, "stay", models.CategoryArt, time.Now())
	require.NoError(t, db.Create(&models.Like{UserID: b.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Bookmark{UserID: b.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: b.ID, PostID: keep.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var likes, bookmarks int64
	db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes)
	db.Model(&models.Bookmark{}).Where("post_id = ?", post.ID).Count(&bookmarks)
	assert.Zero(t, likes)
	assert.Zero(t, bookmarks)

	db.Model(&models.Like{}).Where("post_id = ?", keep.ID).Count(&likes)
	assert.Equal(t, int64(1), likes)

	err := repo.Delete(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_DeleteRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "bookmarks" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 7)
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
