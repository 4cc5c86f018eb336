package models

import (
	"time"
)

// Category classifies a post.
type Category string

const (
	CategoryArt   Category = "art"
	CategoryMusic Category = "music"
	CategoryFilm  Category = "film"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryArt, CategoryMusic, CategoryFilm}

// CoerceCategory returns c when it is a known category and art otherwise.
func CoerceCategory(c string) Category {
	switch Category(c) {
	case CategoryArt, CategoryMusic, CategoryFilm:
		return Category(c)
	}
	return CategoryArt
}

// MediaTypeText is the media type of posts without attachments.
const MediaTypeText = "text"

// Post represents a unit of user-generated content.
type Post struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	UserID    uint     `gorm:"not null;index" json:"user_id"`
	User      User     `gorm:"foreignKey:UserID" json:"-"`
	Content   string   `gorm:"type:text" json:"content"`
	MediaType string   `gorm:"size:20;default:text" json:"media_type"`
	MediaURL  *string  `gorm:"size:500" json:"media_url"`
	Category  Category `gorm:"size:50;default:art;index" json:"category"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes"`
	// BookmarksCount is not persisted; computed at query time
	BookmarksCount int `gorm:"->;-:migration" json:"bookmarks"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->;-:migration" json:"is_liked"`
	// Bookmarked indicates whether the current requesting user bookmarked this post (computed)
	Bookmarked bool      `gorm:"->;-:migration" json:"is_bookmarked"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostView is the projected, serializable form of a post for one viewer.
type PostView struct {
	ID             uint     `json:"id"`
	UserID         uint     `json:"user_id"`
	AuthorName     string   `json:"author_name"`
	AuthorHandle   string   `json:"author_handle"`
	AuthorInitials string   `json:"author_initials"`
	Content        string   `json:"content"`
	MediaType      string   `json:"media_type"`
	MediaURL       *string  `json:"media_url"`
	Category       Category `json:"category"`
	Likes          int      `json:"likes"`
	Bookmarks      int      `json:"bookmarks"`
	IsLiked        bool     `json:"is_liked"`
	IsBookmarked   bool     `json:"is_bookmarked"`
	CreatedAt      *string  `json:"created_at"`
	TimeAgo        string   `json:"time_ago"`
}

// PostPage is one page of the paged posts listing.
type PostPage struct {
	Posts       []PostView `json:"posts"`
	Total       int64      `json:"total"`
	Pages       int        `json:"pages"`
	CurrentPage int        `json:"current_page"`
	PerPage     int        `json:"per_page"`
}

// CategoryStats counts one author's posts per category.
type CategoryStats struct {
	Total int64 `json:"total"`
	Art   int64 `json:"art"`
	Music int64 `json:"music"`
	Film  int64 `json:"film"`
}
