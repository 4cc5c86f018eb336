package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"icarus/internal/models"
	"icarus/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input CreateUserInput
	}{
		{"missing email", CreateUserInput{Password: "password1"}},
		{"missing password", CreateUserInput{Email: "a@x.com"}},
		{"short password", CreateUserInput{Email: "a@x.com", Password: "short"}},
		{"bad email", CreateUserInput{Email: "not-an-email", Password: "password1"}},
		{"unknown theme", CreateUserInput{Email: "a@x.com", Password: "password1", Theme: "pink"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopUserRepo()
			repo.createFn = func(_ context.Context, _ *models.User) error {
				t.Fatal("Create must not be called")
				return nil
			}
			_, err := NewUserService(repo).CreateUser(context.Background(), tt.input)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email}, nil
	}
	_, err := NewUserService(repo).CreateUser(context.Background(), CreateUserInput{
		Email:    " A@X.com ",
		Password: "password1",
	})
	assertCode(t, err, models.CodeConflict)
}

func TestUserService_CreateUser_Defaults(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	ctx := context.Background()

	u, err := s.users.CreateUser(ctx, CreateUserInput{Email: "  Ada@Example.com", Password: "password1", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	require.NotNil(t, u.Username)
	assert.Equal(t, "ada", *u.Username)
	assert.Equal(t, models.ThemeEarth, u.Theme)
	assert.NotEqual(t, "password1", u.PasswordHash)

	dark, err := s.users.CreateUser(ctx, CreateUserInput{Email: "bob@example.com", Password: "password1", Theme: "DARK"})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, dark.Theme)
}

func TestUserService_CreateUser_UsernameSuffix(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)

	emails := []string{"art@one.com", "art@two.com", "art@three.com", "art@four.com"}
	want := []string{"art", "art1", "art2", "art3"}

	seen := map[string]bool{}
	for i, email := range emails {
		u := mustCreateUser(t, s.users, email)
		require.NotNil(t, u.Username)
		assert.Equal(t, want[i], *u.Username)
		assert.False(t, seen[*u.Username], "username %q reused", *u.Username)
		seen[*u.Username] = true
	}
}

func TestUserService_UniqueUsername_Truncates(t *testing.T) {
	t.Parallel()
	svc := NewUserService(noopUserRepo())
	limit := validation.MaxUsernameLength - 6

	tests := []struct {
		name string
		base string
		want string
	}{
		{"empty", "  ", "user"},
		{"short", "Ada", "ada"},
		{"ascii", strings.Repeat("a", 60), strings.Repeat("a", limit)},
		{"multibyte", strings.Repeat("é", 60), strings.Repeat("é", limit)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.uniqueUsername(context.Background(), tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestUserService_CreateUser_RetriesUsernameRace(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	var attempts []string
	repo.createFn = func(_ context.Context, u *models.User) error {
		attempts = append(attempts, *u.Username)
		if len(attempts) == 1 {
			return models.NewConflictError("Username already taken")
		}
		return nil
	}

	u, err := NewUserService(repo).CreateUser(context.Background(), CreateUserInput{Email: "kim@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
	assert.Equal(t, "kim", *u.Username)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	ctx := context.Background()

	a := mustCreateUser(t, s.users, "a@x.com")
	b := mustCreateUser(t, s.users, "b@x.com")

	t.Run("absent fields untouched, blank name clears", func(t *testing.T) {
		_, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: a.ID, Name: models.StringPtr("Ann"), Bio: models.StringPtr("painter")})
		require.NoError(t, err)

		blank := "  "
		u, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: a.ID, Name: &blank})
		require.NoError(t, err)
		assert.Nil(t, u.Name)
		require.NotNil(t, u.Bio)
		assert.Equal(t, "painter", *u.Bio)
	})

	t.Run("blank username and email ignored", func(t *testing.T) {
		blank := ""
		u, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: a.ID, Username: &blank, Email: &blank})
		require.NoError(t, err)
		assert.Equal(t, "a", *u.Username)
		assert.Equal(t, "a@x.com", u.Email)
	})

	t.Run("username collision", func(t *testing.T) {
		taken := "b"
		_, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: a.ID, Username: &taken})
		assertCode(t, err, models.CodeConflict)
	})

	t.Run("email collision", func(t *testing.T) {
		taken := "B@x.com"
		_, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: a.ID, Email: &taken})
		assertCode(t, err, models.CodeConflict)
	})

	t.Run("own values are not collisions", func(t *testing.T) {
		own := "b"
		u, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: b.ID, Username: &own})
		require.NoError(t, err)
		assert.Equal(t, "b", *u.Username)
	})

	t.Run("bio too long", func(t *testing.T) {
		long := strings.Repeat("x", 501)
		_, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: a.ID, Bio: &long})
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.users.UpdateProfile(ctx, UpdateProfileInput{UserID: 999})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	ctx := context.Background()
	u := mustCreateUser(t, s.users, "pw@x.com")

	assertCode(t, s.users.ChangePassword(ctx, u.ID, "wrong-password", "newpassword"), models.CodeUnauthorized)
	assertCode(t, s.users.ChangePassword(ctx, u.ID, "password1", "short"), models.CodeValidation)
	require.NoError(t, s.users.ChangePassword(ctx, u.ID, "password1", "newpassword"))

	_, err := s.auth.Authenticate(ctx, "pw@x.com", "password1")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = s.auth.Authenticate(ctx, "pw@x.com", "newpassword")
	require.NoError(t, err)
}

func TestUserService_SetTheme(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	ctx := context.Background()
	u := mustCreateUser(t, s.users, "theme@x.com")

	updated, err := s.users.SetTheme(ctx, u.ID, "light")
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, updated.Theme)

	_, err = s.users.SetTheme(ctx, u.ID, "forest")
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_DeleteAccount_Cascade(t *testing.T) {
	t.Parallel()
	s, db := newServices(t)
	ctx := context.Background()

	a := mustCreateUser(t, s.users, "a@x.com")
	b := mustCreateUser(t, s.users, "b@x.com")

	aPost, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: a.ID, Content: "mine"})
	require.NoError(t, err)
	bPost, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: b.ID, Content: "theirs"})
	require.NoError(t, err)

	// Engagement by A, and engagement by B on A's post.
	for _, pair := range [][2]uint{{a.ID, aPost.ID}, {a.ID, bPost.ID}, {b.ID, aPost.ID}} {
		_, err := s.posts.ToggleLike(ctx, pair[0], pair[1])
		require.NoError(t, err)
		_, err = s.posts.ToggleBookmark(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	assertCode(t, s.users.DeleteAccount(ctx, a.ID, "nope"), models.CodeUnauthorized)
	require.NoError(t, s.users.DeleteAccount(ctx, a.ID, "password1"))

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", a.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", a.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Like{}).Where("user_id = ? OR post_id = ?", a.ID, aPost.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Bookmark{}).Where("user_id = ? OR post_id = ?", a.ID, aPost.ID).Count(&n).Error)
	assert.Zero(t, n)

	// B's own post survives with its count intact.
	view, err := s.posts.GetPost(ctx, bPost.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Likes)
	assert.Zero(t, view.Bookmarks)
}

func TestUserService_GetUserView(t *testing.T) {
	t.Parallel()
	s, _ := newServices(t)
	u := mustCreateUser(t, s.users, "view@x.com")

	view, err := s.users.GetUserView(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, view.ID)
	assert.Equal(t, "view@x.com", view.Email)
	assert.NotNil(t, view.CreatedAt)

	_, err = s.users.GetUserView(context.Background(), 12345)
	assertCode(t, err, models.CodeNotFound)
}
