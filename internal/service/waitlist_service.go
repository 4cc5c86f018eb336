package service

import (
	"context"
	"log/slog"
	"strings"

	"icarus/internal/middleware"
	"icarus/internal/models"
	"icarus/internal/repository"
	"icarus/internal/validation"
)

const defaultWaitlistSource = "waitlist-page"

type WaitlistService struct {
	repo repository.WaitlistRepository
}

type JoinWaitlistInput struct {
	Email  string
	Name   string
	Role   string
	Source string
}

func NewWaitlistService(repo repository.WaitlistRepository) *WaitlistService {
	return &WaitlistService{repo: repo}
}

// Join adds email to the waitlist. Joining twice is not an error: the
// existing entry is returned with created=false.
func (s *WaitlistService) Join(ctx context.Context, in JoinWaitlistInput) (*models.WaitlistEntry, bool, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" {
		return nil, false, models.NewValidationError("Email is required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = defaultWaitlistSource
	}
	entry := &models.WaitlistEntry{
		Email:  email,
		Name:   models.StringPtr(in.Name),
		Role:   models.StringPtr(in.Role),
		Source: source,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if !models.IsCode(err, models.CodeConflict) {
			return nil, false, err
		}
		// Lost a race with an identical signup.
		existing, lookupErr := s.repo.GetByEmail(ctx, email)
		if lookupErr != nil || existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	middleware.Logger.InfoContext(ctx, "waitlist signup", slog.String("source", source))
	return entry, true, nil
}

// List returns every entry newest first with the total count.
func (s *WaitlistService) List(ctx context.Context) ([]models.WaitlistEntry, int64, error) {
	entries, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}
	return entries, count, nil
}
