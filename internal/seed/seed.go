// Package seed provides helpers to create demo and fake data for development
// and testing databases.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"icarus/internal/middleware"
	"icarus/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed demo.yml
var demoYAML []byte

// DemoData is the account and posts a fresh database is seeded with.
type DemoData struct {
	User struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		Username string `yaml:"username"`
		Bio      string `yaml:"bio"`
		Theme    string `yaml:"theme"`
	} `yaml:"user"`
	Posts []struct {
		Category string `yaml:"category"`
		Content  string `yaml:"content"`
	} `yaml:"posts"`
}

// LoadDemoData parses the embedded demo fixture.
func LoadDemoData() (*DemoData, error) {
	var data DemoData
	if err := yaml.Unmarshal(demoYAML, &data); err != nil {
		return nil, fmt.Errorf("parse demo data: %w", err)
	}
	return &data, nil
}

// Demo creates the demo account and its posts when the post table is empty.
// It reports whether anything was written.
func Demo(ctx context.Context, db *gorm.DB, passwordCost int) (bool, error) {
	data, err := LoadDemoData()
	if err != nil {
		return false, err
	}

	seeded := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Model(&models.Post{}).Count(&posts).Error; err != nil {
			return err
		}
		if posts > 0 {
			return nil
		}

		email := models.NormalizeEmail(data.User.Email)
		var user models.User
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(data.User.Password), passwordCost)
			if err != nil {
				return fmt.Errorf("hash demo password: %w", err)
			}
			user = models.User{
				Email:        email,
				PasswordHash: string(hash),
				Name:         models.StringPtr(data.User.Name),
				Username:     models.StringPtr(data.User.Username),
				Bio:          models.StringPtr(data.User.Bio),
				Theme:        models.Theme(data.User.Theme),
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		for _, p := range data.Posts {
			post := &models.Post{
				UserID:    user.ID,
				Content:   p.Content,
				Category:  models.CoerceCategory(p.Category),
				MediaType: models.MediaTypeText,
			}
			if err := tx.Omit("User").Create(post).Error; err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed demo data: %w", err)
	}

	if seeded {
		middleware.Logger.InfoContext(ctx, "Demo data seeded", slog.Int("posts", len(data.Posts)))
	}
	return seeded, nil
}
