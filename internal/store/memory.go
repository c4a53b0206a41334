package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teknoblog/teknoblog/internal/post"
)

// InMemoryStore is an in-memory implementation of ContentStore.
// Thread-safe via RWMutex. Used in tests and local development.
type InMemoryStore struct {
	mu    sync.RWMutex
	posts map[string]*post.Post
}

// NewInMemoryStore creates a new in-memory content store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		posts: make(map[string]*post.Post),
	}
}

// clonePost returns a deep copy so callers can never mutate stored state.
func clonePost(p *post.Post) *post.Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.Images = append([]post.Image(nil), p.Images...)
	c.Likes = append([]string(nil), p.Likes...)
	c.Bookmarks = append([]string(nil), p.Bookmarks...)
	return &c
}

// ListByCreation returns up to limit active posts newest first, narrowed
// to category when one is given.
func (s *InMemoryStore) ListByCreation(ctx context.Context, limit int, category string) ([]*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*post.Post
	for _, p := range s.posts {
		if p.Status != post.StatusActive {
			continue
		}
		if !matchesCategory(p, category) {
			continue
		}
		candidates = append(candidates, p)
	}

	sortByCreatedDesc(candidates)

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	copies := make([]*post.Post, len(candidates))
	for i, p := range candidates {
		copies[i] = clonePost(p)
	}
	return copies, nil
}

// ListByAuthor returns up to limit posts by the given author, newest first.
func (s *InMemoryStore) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*post.Post, error) {
	return s.ListByAuthors(ctx, []string{authorID}, limit, "")
}

// ListByAuthors returns up to limit active posts by any of the given
// authors, newest first.
func (s *InMemoryStore) ListByAuthors(ctx context.Context, authorIDs []string, limit int, category string) ([]*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}

	var candidates []*post.Post
	for _, p := range s.posts {
		if p.Status != post.StatusActive {
			continue
		}
		if _, ok := authors[p.AuthorID]; !ok {
			continue
		}
		if !matchesCategory(p, category) {
			continue
		}
		candidates = append(candidates, p)
	}

	sortByCreatedDesc(candidates)

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	copies := make([]*post.Post, len(candidates))
	for i, p := range candidates {
		copies[i] = clonePost(p)
	}
	return copies, nil
}

// ListBookmarkedBy returns up to limit active posts the user has
// bookmarked, newest first.
func (s *InMemoryStore) ListBookmarkedBy(ctx context.Context, userID string, limit int) ([]*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*post.Post
	for _, p := range s.posts {
		if p.Status != post.StatusActive {
			continue
		}
		if !p.BookmarkedBy(userID) {
			continue
		}
		candidates = append(candidates, p)
	}

	sortByCreatedDesc(candidates)

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	copies := make([]*post.Post, len(candidates))
	for i, p := range candidates {
		copies[i] = clonePost(p)
	}
	return copies, nil
}

// GetByID retrieves a post by its ID.
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

// Create inserts a new post, assigning ID, timestamps, and default status.
func (s *InMemoryStore) Create(ctx context.Context, p *post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = post.StatusActive
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	s.posts[p.ID] = clonePost(p)
	return nil
}

// Update replaces the mutable content fields of an existing post.
func (s *InMemoryStore) Update(ctx context.Context, p *post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[p.ID]
	if !ok {
		return ErrNotFound
	}

	existing.Title = p.Title
	existing.Content = p.Content
	existing.Category = p.Category
	existing.Tags = append([]string(nil), p.Tags...)
	existing.ImageURL = p.ImageURL
	existing.Images = append([]post.Image(nil), p.Images...)
	existing.UpdatedAt = time.Now()
	return nil
}

// Delete removes a post.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// SetStatus moves a post between lifecycle states.
func (s *InMemoryStore) SetStatus(ctx context.Context, id, status string) error {
	return s.mutate(id, func(p *post.Post) {
		p.Status = status
		p.UpdatedAt = time.Now()
	})
}

// Like adds userID to the post's like set.
func (s *InMemoryStore) Like(ctx context.Context, postID, userID string) error {
	return s.mutate(postID, func(p *post.Post) {
		p.Likes = addToSet(p.Likes, userID)
	})
}

// Unlike removes userID from the post's like set.
func (s *InMemoryStore) Unlike(ctx context.Context, postID, userID string) error {
	return s.mutate(postID, func(p *post.Post) {
		p.Likes = removeFromSet(p.Likes, userID)
	})
}

// Bookmark adds userID to the post's bookmark set.
func (s *InMemoryStore) Bookmark(ctx context.Context, postID, userID string) error {
	return s.mutate(postID, func(p *post.Post) {
		p.Bookmarks = addToSet(p.Bookmarks, userID)
	})
}

// Unbookmark removes userID from the post's bookmark set.
func (s *InMemoryStore) Unbookmark(ctx context.Context, postID, userID string) error {
	return s.mutate(postID, func(p *post.Post) {
		p.Bookmarks = removeFromSet(p.Bookmarks, userID)
	})
}

// AdjustCommentCount shifts the comment count by delta, clamping at zero.
func (s *InMemoryStore) AdjustCommentCount(ctx context.Context, postID string, delta int) error {
	return s.mutate(postID, func(p *post.Post) {
		p.Comments += delta
		if p.Comments < 0 {
			p.Comments = 0
		}
	})
}

// mutate applies fn to a stored post under the write lock.
func (s *InMemoryStore) mutate(postID string, fn func(*post.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}
	fn(p)
	return nil
}

// addToSet appends id only if absent, preserving set semantics.
func addToSet(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

// removeFromSet removes id if present.
func removeFromSet(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// sortByCreatedDesc sorts posts by created_at DESC, then by ID ASC for
// tie-breaking, giving a stable order across calls.
func sortByCreatedDesc(posts []*post.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.After(posts[j].CreatedAt) {
			return true
		}
		if posts[i].CreatedAt.Before(posts[j].CreatedAt) {
			return false
		}
		return posts[i].ID < posts[j].ID
	})
}
