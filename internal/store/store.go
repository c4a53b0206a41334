// Package store provides the content store for posts: the system of
// record the ranking engine and feed handlers read from and the
// engagement operations write to.
package store

import (
	"context"
	"errors"

	"github.com/teknoblog/teknoblog/internal/post"
)

// Common errors for content store operations.
var (
	// ErrNotFound is returned when the requested post does not exist.
	ErrNotFound = errors.New("post not found")

	// ErrUnavailable is returned when the underlying store cannot be
	// reached (connectivity, permission, quota). Callers must not retry
	// here; retry policy belongs to the store client.
	ErrUnavailable = errors.New("content store unavailable")
)

// ContentStore defines the data operations on posts.
//
// Likes and bookmarks keep set semantics: adding a user who is already
// present is a no-op, so no user ever counts twice.
type ContentStore interface {
	// ListByCreation returns up to limit active posts ordered by creation
	// time descending. A category other than "" or "all" narrows the
	// result; returned posts always match it.
	ListByCreation(ctx context.Context, limit int, category string) ([]*post.Post, error)

	// ListByAuthor returns up to limit posts by the given author,
	// newest first.
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*post.Post, error)

	// ListByAuthors returns up to limit active posts authored by any of
	// the given IDs, newest first, optionally narrowed to a category.
	ListByAuthors(ctx context.Context, authorIDs []string, limit int, category string) ([]*post.Post, error)

	// ListBookmarkedBy returns up to limit active posts the given user has
	// bookmarked, newest first.
	ListBookmarkedBy(ctx context.Context, userID string, limit int) ([]*post.Post, error)

	// GetByID retrieves a single post.
	GetByID(ctx context.Context, id string) (*post.Post, error)

	// Create inserts a new post, assigning its ID and timestamps.
	Create(ctx context.Context, p *post.Post) error

	// Update replaces the mutable content fields of an existing post
	// (title, content, category, tags, images) and bumps UpdatedAt.
	// Engagement fields are only changed through the dedicated operations.
	Update(ctx context.Context, p *post.Post) error

	// Delete removes a post.
	Delete(ctx context.Context, id string) error

	// SetStatus moves a post between the active and inactive lifecycle
	// states. Inactive posts drop out of every feed but stay readable
	// by direct ID.
	SetStatus(ctx context.Context, id, status string) error

	// Like adds userID to the post's like set.
	Like(ctx context.Context, postID, userID string) error

	// Unlike removes userID from the post's like set.
	Unlike(ctx context.Context, postID, userID string) error

	// Bookmark adds userID to the post's bookmark set.
	Bookmark(ctx context.Context, postID, userID string) error

	// Unbookmark removes userID from the post's bookmark set.
	Unbookmark(ctx context.Context, postID, userID string) error

	// AdjustCommentCount shifts the denormalized comment count by delta,
	// clamping at zero. The comment bodies themselves live outside this
	// store.
	AdjustCommentCount(ctx context.Context, postID string, delta int) error
}

// matchesCategory reports whether a post passes the category filter.
func matchesCategory(p *post.Post, category string) bool {
	if category == "" || category == post.CategoryAll {
		return true
	}
	return p.Category == category
}
