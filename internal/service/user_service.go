package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"icarus/internal/cache"
	"icarus/internal/middleware"
	"icarus/internal/models"
	"icarus/internal/repository"
	"icarus/internal/validation"
)

// createUserAttempts bounds retries when a concurrent signup grabs the
// username picked for this one.
const createUserAttempts = 3

type UserService struct {
	userRepo repository.UserRepository
}

type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Theme    string
}

// UpdateProfileInput carries the optional profile fields. A nil field is
// left untouched; a blank name or bio clears it; a blank username or email
// is ignored.
type UpdateProfileInput struct {
	UserID   uint
	Name     *string
	Username *string
	Bio      *string
	Email    *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserView returns the public projection of a user, served from cache when possible.
func (s *UserService) GetUserView(ctx context.Context, id uint) (models.UserView, error) {
	var view models.UserView
	err := cache.Aside(ctx, cache.UserKey(id), &view, cache.UserTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		view = user.View()
		return nil
	})
	return view, err
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	theme := models.DefaultTheme
	if t := strings.TrimSpace(in.Theme); t != "" {
		theme = models.Theme(strings.ToLower(t))
		if !theme.Valid() {
			return nil, models.NewValidationError("Invalid theme")
		}
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var user *models.User
	for attempt := 0; attempt < createUserAttempts; attempt++ {
		username, err := s.uniqueUsername(ctx, models.EmailLocalPart(email))
		if err != nil {
			return nil, err
		}

		user = &models.User{
			Email:        email,
			PasswordHash: hash,
			Name:         models.StringPtr(in.Name),
			Username:     &username,
			Phone:        models.StringPtr(in.Phone),
			Theme:        theme,
			IsActive:     true,
		}
		err = s.userRepo.Create(ctx, user)
		if err == nil {
			break
		}
		if !models.IsCode(err, models.CodeConflict) {
			return nil, err
		}

		// Either the email or the derived username was taken concurrently.
		existing, lookupErr := s.userRepo.GetByEmail(ctx, email)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil || attempt == createUserAttempts-1 {
			return nil, err
		}
	}

	middleware.Logger.InfoContext(ctx, "user created",
		slog.Uint64("new_user_id", uint64(user.ID)),
		slog.String("username", *user.Username),
	)
	return user, nil
}

// uniqueUsername returns base when free, otherwise base1, base2, ... until
// an unused name is found.
func (s *UserService) uniqueUsername(ctx context.Context, base string) (string, error) {
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		base = "user"
	}
	// Leave room for a numeric suffix within the column size.
	if r := []rune(base); len(r) > validation.MaxUsernameLength-6 {
		base = string(r[:validation.MaxUsernameLength-6])
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := s.userRepo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, n)
	}
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxNameLen = 100
	const maxBioLen = 500

	if in.Name != nil {
		name := models.StringPtr(*in.Name)
		if name != nil && len([]rune(*name)) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 100 characters)")
		}
		user.Name = name
	}
	if in.Bio != nil {
		bio := models.StringPtr(*in.Bio)
		if bio != nil && len([]rune(*bio)) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = bio
	}

	if in.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*in.Username))
		if username != "" && (user.Username == nil || *user.Username != username) {
			if err := validation.ValidateUsername(username); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			other, err := s.userRepo.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, models.NewConflictError("Username already taken")
			}
			user.Username = &username
		}
	}

	if in.Email != nil {
		email := models.NormalizeEmail(*in.Email)
		if email != "" && email != user.Email {
			if err := validation.ValidateEmail(email); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			other, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, models.NewConflictError("Email already registered")
			}
			user.Email = email
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, user.ID)
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, currentPassword) {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "password changed")
	return nil
}

func (s *UserService) SetTheme(ctx context.Context, userID uint, theme string) (*models.User, error) {
	t := models.Theme(strings.ToLower(strings.TrimSpace(theme)))
	if !t.Valid() {
		return nil, models.NewValidationError("Invalid theme")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Theme = t
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, user.ID)
	return user, nil
}

// DeleteAccount removes the account and everything it owns once password is confirmed.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint, password string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, password) {
		return models.NewUnauthorizedError("Incorrect password")
	}

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return err
	}
	cache.InvalidateUser(ctx, userID)

	middleware.Logger.InfoContext(ctx, "account deleted", slog.Uint64("deleted_user_id", uint64(userID)))
	return nil
}
