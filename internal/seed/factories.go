package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"icarus/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FakePassword is the password of every generated account.
const FakePassword = "password123"

// Options tune the fake data Factory.
type Options struct {
	// MaxDays spreads post timestamps over this many past days.
	MaxDays int
	// PasswordCost is the bcrypt cost for generated accounts.
	PasswordCost int
	// Seed makes generated content reproducible when non-zero.
	Seed int64
}

// Factory builds fake users, posts and engagement and persists them.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	gofakeit.Seed(opts.Seed)

	// Every fake account shares one password, so hash it once.
	hash, err := bcrypt.GenerateFromPassword([]byte(FakePassword), opts.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash fake password: %w", err)
	}

	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		hash: string(hash),
	}, nil
}

// CreateUser persists a fake user. Optional overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), gofakeit.Number(100, 99999))
	user := &models.User{
		Email:        fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		PasswordHash: f.hash,
		Name:         models.StringPtr(gofakeit.Name()),
		Username:     &username,
		Bio:          models.StringPtr(gofakeit.Sentence(10)),
		Theme:        []models.Theme{models.ThemeDark, models.ThemeLight, models.ThemeEarth}[f.rng.Intn(3)],
		IsActive:     true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a fake post by user without persisting it.
func (f *Factory) BuildPost(user *models.User) *models.Post {
	post := &models.Post{
		UserID:    user.ID,
		Content:   gofakeit.Paragraph(1, 2, 12, " "),
		Category:  models.Categories[f.rng.Intn(len(models.Categories))],
		MediaType: models.MediaTypeText,
	}

	// One post in four carries an image.
	if f.rng.Intn(4) == 0 {
		url := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		post.MediaURL = &url
		post.MediaType = "image"
	}

	back := time.Duration(f.rng.Intn(f.opts.MaxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)
	return post
}

// CreatePosts persists n fake posts for each user in one batch.
func (f *Factory) CreatePosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(users)*n)
	for _, u := range users {
		for i := 0; i < n; i++ {
			posts = append(posts, f.BuildPost(u))
		}
	}
	if len(posts) == 0 {
		return posts, nil
	}
	if err := f.db.WithContext(ctx).Omit("User").CreateInBatches(&posts, 200).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedEngagement has every user like and bookmark a random share of posts.
// Duplicate pairs are skipped by the unique indexes.
func (f *Factory) SeedEngagement(ctx context.Context, users []*models.User, posts []*models.Post) (likes, bookmarks int, err error) {
	if len(posts) == 0 {
		return 0, 0, nil
	}

	var likeRows []models.Like
	var bookmarkRows []models.Bookmark
	for _, u := range users {
		for _, p := range posts {
			if f.rng.Intn(3) == 0 {
				likeRows = append(likeRows, models.Like{UserID: u.ID, PostID: p.ID})
			}
			if f.rng.Intn(8) == 0 {
				bookmarkRows = append(bookmarkRows, models.Bookmark{UserID: u.ID, PostID: p.ID})
			}
		}
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}
	err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(likeRows) > 0 {
			if err := tx.Clauses(onConflict).Omit("User", "Post").CreateInBatches(&likeRows, 500).Error; err != nil {
				return err
			}
		}
		if len(bookmarkRows) > 0 {
			if err := tx.Clauses(onConflict).Omit("User", "Post").CreateInBatches(&bookmarkRows, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(likeRows), len(bookmarkRows), nil
}

// Populate creates users fake accounts with postsPerUser posts each and
// random engagement between them.
func (f *Factory) Populate(ctx context.Context, users, postsPerUser int) (*Summary, error) {
	created := make([]*models.User, 0, users)
	for i := 0; i < users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		created = append(created, u)
	}

	posts, err := f.CreatePosts(ctx, created, postsPerUser)
	if err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}

	likes, bookmarks, err := f.SeedEngagement(ctx, created, posts)
	if err != nil {
		return nil, fmt.Errorf("seed engagement: %w", err)
	}

	return &Summary{Users: len(created), Posts: len(posts), Likes: likes, Bookmarks: bookmarks}, nil
}

// Summary counts what Populate generated.
type Summary struct {
	Users     int
	Posts     int
	Likes     int
	Bookmarks int
}
