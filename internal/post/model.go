// Package post defines the post model shared by the content store,
// ranking engine, and HTTP handlers.
package post

import (
	"time"
)

// Status values for a post lifecycle.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// CategoryAll is the filter wildcard matching every category.
const CategoryAll = "all"

// Categories is the fixed set of post categories. CategoryAll is a filter
// value only, never stored on a post.
var Categories = []string{
	CategoryAll,
	"Yazılım",
	"Donanım",
	"Siber Güvenlik",
	"Python",
	"Yapay Zeka",
	"Mobil",
	"Web",
	"Oyun",
	"Veri Bilimi",
	"Diğer",
}

// ValidCategory reports whether c is a storable category (CategoryAll excluded).
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known && c != CategoryAll {
			return true
		}
	}
	return false
}

// Image is a media reference with an optional layout position.
type Image struct {
	URL      string `json:"url"`
	Position string `json:"position,omitempty"`
}

// Post is a stored blog post.
//
// Likes and Bookmarks hold user IDs with set semantics: a user appears at
// most once, so cardinality equals the like/bookmark count. Comments is a
// denormalized count maintained by the store; it may legitimately be 0.
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID string `json:"author_id"`

	// Display metadata resolved from the author profile at read time.
	// Never persisted with the post.
	AuthorName     string `json:"author_name,omitempty"`
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorAvatar   string `json:"author_avatar,omitempty"`

	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`

	// ImageURL is the legacy single-image field; Images carries the
	// multi-image layout. Either counts as media.
	ImageURL string  `json:"image_url,omitempty"`
	Images   []Image `json:"images,omitempty"`

	Likes     []string `json:"likes,omitempty"`
	Bookmarks []string `json:"bookmarks,omitempty"`
	Comments  int      `json:"comments"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeCount returns the number of distinct users who liked the post.
func (p *Post) LikeCount() int {
	return countDistinct(p.Likes)
}

// BookmarkCount returns the number of distinct users who bookmarked the post.
func (p *Post) BookmarkCount() int {
	return countDistinct(p.Bookmarks)
}

// CommentCount returns the comment count, clamping negative values to 0.
// Stores maintained by older clients have been observed with drifted counts.
func (p *Post) CommentCount() int {
	if p.Comments < 0 {
		return 0
	}
	return p.Comments
}

// HasMedia reports whether the post carries any image.
func (p *Post) HasMedia() bool {
	return p.ImageURL != "" || len(p.Images) > 0
}

// HasTags reports whether the post has at least one tag.
func (p *Post) HasTags() bool {
	return len(p.Tags) > 0
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	return contains(p.Likes, userID)
}

// BookmarkedBy reports whether userID has bookmarked the post.
func (p *Post) BookmarkedBy(userID string) bool {
	return contains(p.Bookmarks, userID)
}

// countDistinct counts unique non-empty IDs. The stored arrays are expected
// to be sets already; counting defensively keeps the invariant even when an
// upstream writer slipped a duplicate in.
func countDistinct(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		seen[id] = struct{}{}
	}
	return len(seen)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
