// Package feed assembles the post feeds served over the API: popular,
// recent, and following. Feeds return fully decorated posts — author
// name, username, and avatar are resolved in one batch per request.
package feed

import (
	"context"
	"fmt"

	"github.com/teknoblog/teknoblog/internal/post"
	"github.com/teknoblog/teknoblog/internal/profile"
	"github.com/teknoblog/teknoblog/internal/ranking"
	"github.com/teknoblog/teknoblog/internal/store"
)

// DefaultLimit applies when a request does not specify a feed size.
const DefaultLimit = 20

// MaxLimit caps a single feed request.
const MaxLimit = 100

// FollowLister is the slice of the follow graph the feed needs.
type FollowLister interface {
	Following(ctx context.Context, followerID string) ([]string, error)
}

// Service builds the three feeds.
type Service struct {
	engine   *ranking.Engine
	store    store.ContentStore
	resolver *profile.Resolver
	follows  FollowLister
}

// NewService creates a feed Service.
func NewService(engine *ranking.Engine, contentStore store.ContentStore, resolver *profile.Resolver, follows FollowLister) *Service {
	return &Service{
		engine:   engine,
		store:    contentStore,
		resolver: resolver,
		follows:  follows,
	}
}

// ClampLimit normalizes a requested feed size into [1, MaxLimit],
// substituting DefaultLimit for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Popular returns the top posts by popularity score.
func (s *Service) Popular(ctx context.Context, limit int, category string) ([]*post.Post, error) {
	posts, err := s.engine.PopularPosts(ctx, limit, category)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, posts)
}

// Recent returns the newest posts. The fetch overshoots the requested
// size — three-fold under a category filter, slightly otherwise — so a
// full page survives the filter, then trims back to limit.
func (s *Service) Recent(ctx context.Context, limit int, category string) ([]*post.Post, error) {
	fetchLimit := limit + 5
	if category != "" && category != post.CategoryAll {
		fetchLimit = limit * 3
	}

	posts, err := s.store.ListByCreation(ctx, fetchLimit, category)
	if err != nil {
		return nil, fmt.Errorf("recent feed: %w", err)
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return s.decorate(ctx, posts)
}

// Following returns the newest posts by authors the user follows. A user
// who follows nobody gets an empty feed, not an error.
func (s *Service) Following(ctx context.Context, userID string, limit int, category string) ([]*post.Post, error) {
	authorIDs, err := s.follows.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("following feed: %w", err)
	}
	if len(authorIDs) == 0 {
		return []*post.Post{}, nil
	}

	posts, err := s.store.ListByAuthors(ctx, authorIDs, limit, category)
	if err != nil {
		return nil, fmt.Errorf("following feed: %w", err)
	}
	return s.decorate(ctx, posts)
}

// Bookmarked returns the newest posts the user has bookmarked, decorated.
// A user with no bookmarks gets an empty feed.
func (s *Service) Bookmarked(ctx context.Context, userID string, limit int) ([]*post.Post, error) {
	posts, err := s.store.ListBookmarkedBy(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("bookmark feed: %w", err)
	}
	return s.decorate(ctx, posts)
}

// Author returns the newest posts by one author, decorated.
func (s *Service) Author(ctx context.Context, authorID string, limit int) ([]*post.Post, error) {
	posts, err := s.store.ListByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("author feed: %w", err)
	}
	return s.decorate(ctx, posts)
}

// decorate fills the author display fields on every post from one batch
// profile resolution.
func (s *Service) decorate(ctx context.Context, posts []*post.Post) ([]*post.Post, error) {
	if len(posts) == 0 {
		return []*post.Post{}, nil
	}

	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}

	profiles, err := s.resolver.ResolveAll(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("decorate feed: %w", err)
	}

	for _, p := range posts {
		author := profiles[p.AuthorID]
		p.AuthorName = author.Name
		p.AuthorUsername = author.Username
		p.AuthorAvatar = author.AvatarURL
	}
	return posts, nil
}
