package server

import (
	"context"
	"strings"
	"time"

	"icarus/internal/middleware"
	"icarus/internal/models"
	"icarus/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookieName = "icarus_session"

	localUserID  = "userID"
	localSession = "session"
)

// sessionToken reads the session from the Authorization header, falling back
// to the session cookie.
func sessionToken(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return c.Cookies(sessionCookieName)
}

// SessionRequired rejects requests without a valid session for an existing
// account.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		session, err := s.authService.ResolveSession(ctx, sessionToken(c))
		if err != nil {
			return respondError(c, err)
		}
		// A token outlives an account deleted from another session.
		if _, err := s.userService.GetUserView(ctx, session.UserID); err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				err = models.NewUnauthorizedError("Account no longer exists")
			}
			return respondError(c, err)
		}
		s.attachSession(c, session)
		return c.Next()
	}
}

// SessionOptional resolves the viewer when a valid session is present and
// lets anonymous requests through with viewer id 0.
func (s *Server) SessionOptional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := sessionToken(c); token != "" {
			if session, err := s.authService.ResolveSession(c.UserContext(), token); err == nil {
				s.attachSession(c, session)
			}
		}
		return c.Next()
	}
}

func (s *Server) attachSession(c *fiber.Ctx, session *service.Session) {
	c.Locals(localUserID, session.UserID)
	c.Locals(localSession, session)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, session.UserID)
	c.SetUserContext(ctx)
}

// viewerID is the signed-in user's id, or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func currentSession(c *fiber.Ctx) *service.Session {
	session, _ := c.Locals(localSession).(*service.Session)
	return session
}

func (s *Server) setSessionCookie(c *fiber.Ctx, session *service.Session, remember bool) {
	cookie := &fiber.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.config.SessionCookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if remember {
		cookie.Expires = session.ExpiresAt
	}
	c.Cookie(cookie)
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.SessionCookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// signIn issues a session for user, sets the cookie and answers with the
// user and token.
func (s *Server) signIn(c *fiber.Ctx, status int, user *models.User, remember bool) error {
	session, err := s.authService.IssueSession(user, remember)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, session, remember)
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"user":    user.View(),
		"token":   session.Token,
	})
}
