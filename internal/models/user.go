// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User represents an Icarus account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	Name         *string   `gorm:"size:100" json:"name"`
	Username     *string   `gorm:"size:50;uniqueIndex" json:"username"`
	Bio          *string   `gorm:"size:500" json:"bio"`
	Phone        *string   `gorm:"size:20" json:"phone,omitempty"`
	Theme        Theme     `gorm:"size:20;default:earth" json:"theme"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EmailLocalPart returns the part of the email before '@'.
func (u *User) EmailLocalPart() string {
	return EmailLocalPart(u.Email)
}

// DisplayName is the name, else the username, else the email local part.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.EmailLocalPart()
}

// Initials is the uppercased first character of DisplayName, or "?".
func (u *User) Initials() string {
	r, size := utf8.DecodeRuneInString(u.DisplayName())
	if size == 0 {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Handle is "@username", falling back to "@" plus the email local part.
func (u *User) Handle() string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	return "@" + u.EmailLocalPart()
}

// UserView is the serializable form of a user handed to clients.
type UserView struct {
	ID        uint    `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	Theme     Theme   `json:"theme"`
	CreatedAt *string `json:"created_at"`
}

// View projects the user for API responses.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Username:  u.Username,
		Bio:       u.Bio,
		Theme:     u.Theme,
		CreatedAt: FormatTimestamp(u.CreatedAt),
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns everything before the first '@'.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// FormatTimestamp renders t as RFC 3339, or nil for the zero time.
func FormatTimestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// StringPtr returns nil for blank input and a pointer to the trimmed value otherwise.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
