package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"icarus/internal/cache"
	"icarus/internal/middleware"
	"icarus/internal/models"
	"icarus/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionIssuer   = "icarus-api"
	sessionAudience = "icarus-client"

	// ShortSessionTTL applies when the user did not ask to be remembered.
	ShortSessionTTL = 24 * time.Hour
)

// passwordHashCost is lowered by tests.
var passwordHashCost = bcrypt.DefaultCost

// dummyHash keeps sign-in timing uniform for unknown emails.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("icarus-timing-guard"), bcrypt.MinCost)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Session is a signed session token handed to the client.
type Session struct {
	Token     string
	ID        string
	UserID    uint
	ExpiresAt time.Time
}

// AuthService establishes, resolves and revokes sessions for plain user records.
type AuthService struct {
	userRepo    repository.UserRepository
	secret      []byte
	rememberTTL time.Duration
	now         func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, secret string, rememberTTL time.Duration) *AuthService {
	if rememberTTL <= 0 {
		rememberTTL = 7 * ShortSessionTTL
	}
	return &AuthService{
		userRepo:    userRepo,
		secret:      []byte(secret),
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// Authenticate returns the account matching email and password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		middleware.AuthAttempts.WithLabelValues("signin", "invalid").Inc()
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		middleware.AuthAttempts.WithLabelValues("signin", "failure").Inc()
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if !checkPassword(user.PasswordHash, password) {
		middleware.AuthAttempts.WithLabelValues("signin", "failure").Inc()
		middleware.Logger.WarnContext(ctx, "sign-in rejected", slog.Uint64("user_id", uint64(user.ID)))
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}

	middleware.AuthAttempts.WithLabelValues("signin", "success").Inc()
	return user, nil
}

// IssueSession signs a session for user. Remembered sessions last the
// configured TTL, others a day.
func (s *AuthService) IssueSession(user *models.User, remember bool) (*Session, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("session secret not configured")
	}

	now := s.now()
	ttl := ShortSessionTTL
	if remember {
		ttl = s.rememberTTL
	}

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    sessionIssuer,
		Audience:  jwt.ClaimStrings{sessionAudience},
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        session.ID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	session.Token = token
	return session, nil
}

// ResolveSession validates token and returns the session it carries.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired session")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid session subject")
	}

	revoked, err := cache.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "session revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Session has been revoked")
	}

	return &Session{
		Token:     token,
		ID:        claims.ID,
		UserID:    uint(userID),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the session until it would have expired.
func (s *AuthService) Revoke(ctx context.Context, session *Session) error {
	if session == nil {
		return nil
	}
	return cache.RevokeSession(ctx, session.ID, session.ExpiresAt.Sub(s.now()))
}
