package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"icarus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepository_ToggleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "a@x.com", "a")
	reader := seedUser(t, db, "b@x.com", "b")
	post := seedPost(t, db, author, "hello", models.CategoryArt, time.Now())

	rows := func(table string) int64 {
		var n int64
		require.NoError(t, db.Table(table).
			Where("user_id = ? AND post_id = ?", reader.ID, post.ID).
			Count(&n).Error)
		return n
	}

	for table, repo := range map[string]EngagementRepository{
		"likes":     NewLikeRepository(db),
		"bookmarks": NewBookmarkRepository(db),
	} {
		t.Run(table, func(t *testing.T) {
			on, err := repo.Toggle(ctx, reader.ID, post.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ToggleResult{On: true, Count: 1}, on)
			assert.Equal(t, int64(1), rows(table))

			off, err := repo.Toggle(ctx, reader.ID, post.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ToggleResult{On: false, Count: 0}, off)
			assert.Zero(t, rows(table))
		})
	}
}

func TestEngagementRepository_ToggleUnknownPost(t *testing.T) {
	db := newTestDB(t)
	reader := seedUser(t, db, "b@x.com", "b")

	_, err := NewLikeRepository(db).Toggle(context.Background(), reader.ID, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var likes int64
	db.Model(&models.Like{}).Count(&likes)
	assert.Zero(t, likes)
}

func TestEngagementRepository_ToggleUnknownUser(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "a@x.com", "a")
	post := seedPost(t, db, author, "hello", models.CategoryArt, time.Now())

	_, err := NewLikeRepository(db).Toggle(context.Background(), 999, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestEngagementRepository_ConcurrentTogglesNeverDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewLikeRepository(db)

	author := seedUser(t, db, "a@x.com", "a")
	reader := seedUser(t, db, "b@x.com", "b")
	post := seedPost(t, db, author, "hello", models.CategoryArt, time.Now())

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Toggle(ctx, reader.ID, post.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// An even number of toggles lands back at "off", with never more than one row.
	var rows int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", reader.ID, post.ID).
		Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestEngagementRepository_ToggleUsesOnConflictInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE id = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE user_id = $1 AND post_id = $2`)).
		WithArgs(2, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("user_id","post_id") DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "likes" WHERE post_id = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	res, err := repo.Toggle(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ToggleResult{On: true, Count: 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ToggleRollsBackOnCountFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookmarkRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "bookmarks"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookmarks"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Toggle(context.Background(), 2, 5)
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
