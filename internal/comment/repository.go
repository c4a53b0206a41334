package comment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a comment does not exist.
var ErrNotFound = errors.New("comment not found")

// Repository provides access to stored comments.
type Repository interface {
	// Create stores a comment, assigning ID and CreatedAt when unset.
	Create(ctx context.Context, c *Comment) error
	// ListByPost returns up to limit comments on a post, newest first.
	ListByPost(ctx context.Context, postID string, limit int) ([]*Comment, error)
	// GetByID returns a single comment or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Comment, error)
	// Delete removes a comment scoped to its post. Deleting a missing
	// comment returns ErrNotFound.
	Delete(ctx context.Context, postID, commentID string) error
	// DeleteByPost removes every comment on a post and returns how many
	// were removed. Used when the post itself is deleted.
	DeleteByPost(ctx context.Context, postID string) (int, error)
}

// InMemoryRepository is a thread-safe in-memory Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	comments map[string]*Comment
}

// NewInMemoryRepository creates an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		comments: make(map[string]*Comment),
	}
}

// Create stores a copy of the comment.
func (r *InMemoryRepository) Create(_ context.Context, c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.comments[cp.ID] = &cp

	c.ID = cp.ID
	c.CreatedAt = cp.CreatedAt
	return nil
}

// ListByPost returns copies of the post's comments, newest first.
func (r *InMemoryRepository) ListByPost(_ context.Context, postID string, limit int) ([]*Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			cp := *c
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	if result == nil {
		result = []*Comment{}
	}
	return result, nil
}

// GetByID returns a copy of the comment with the given ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Delete removes one comment. The post scope prevents deleting a comment
// through the wrong post's URL.
func (r *InMemoryRepository) Delete(_ context.Context, postID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[commentID]
	if !ok || c.PostID != postID {
		return ErrNotFound
	}
	delete(r.comments, commentID)
	return nil
}

// DeleteByPost removes every comment on the post.
func (r *InMemoryRepository) DeleteByPost(_ context.Context, postID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
			removed++
		}
	}
	return removed, nil
}
