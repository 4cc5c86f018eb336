package service

import (
	"fmt"
	"time"

	"icarus/internal/models"
)

const day = 24 * time.Hour

// TimeAgo renders the age of createdAt relative to now as a compact label
// ("3y", "2mo", "5d", "4h", "12m", "now"). Every step truncates; a
// timestamp in the future counts as "now" and a zero timestamp yields "".
func TimeAgo(now, createdAt time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	diff := now.Sub(createdAt)
	if diff <= 0 {
		return "now"
	}

	days := int64(diff / day)
	secs := int64((diff % day) / time.Second)

	switch {
	case days > 365:
		return fmt.Sprintf("%dy", days/365)
	case days > 30:
		return fmt.Sprintf("%dmo", days/30)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case secs > 3600:
		return fmt.Sprintf("%dh", secs/3600)
	case secs > 60:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return "now"
	}
}

// ProjectPost builds the view of post for viewerID. Counts and viewer flags
// come from the query that loaded the post; an anonymous viewer (0) never
// sees a post as liked or bookmarked.
func ProjectPost(post *models.Post, viewerID uint, now time.Time) models.PostView {
	author := post.User
	if author.ID == 0 {
		author.ID = post.UserID
	}

	mediaType := post.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeText
	}

	return models.PostView{
		ID:             post.ID,
		UserID:         post.UserID,
		AuthorName:     author.DisplayName(),
		AuthorHandle:   author.Handle(),
		AuthorInitials: author.Initials(),
		Content:        post.Content,
		MediaType:      mediaType,
		MediaURL:       post.MediaURL,
		Category:       post.Category,
		Likes:          post.LikesCount,
		Bookmarks:      post.BookmarksCount,
		IsLiked:        viewerID != 0 && post.Liked,
		IsBookmarked:   viewerID != 0 && post.Bookmarked,
		CreatedAt:      models.FormatTimestamp(post.CreatedAt),
		TimeAgo:        TimeAgo(now, post.CreatedAt),
	}
}

// ProjectPosts projects every post in order. The result is never nil.
func ProjectPosts(posts []*models.Post, viewerID uint, now time.Time) []models.PostView {
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, ProjectPost(p, viewerID, now))
	}
	return views
}
