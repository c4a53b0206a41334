// Package follow maintains the directed follow graph between users.
package follow

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned on a duplicate follow.
	ErrAlreadyFollowing = errors.New("already following")
	// ErrNotFollowing is returned when unfollowing a user who is not followed.
	ErrNotFollowing = errors.New("not following")
)

// Edge is a single follower→followed relationship.
type Edge struct {
	FollowerID string    `json:"followerId" bson:"follower_id"`
	FollowedID string    `json:"followedId" bson:"followed_id"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// Repository provides access to the follow graph.
type Repository interface {
	// Follow adds an edge. Self-follows return ErrSelfFollow; existing
	// edges return ErrAlreadyFollowing.
	Follow(ctx context.Context, followerID, followedID string) error
	// Unfollow removes an edge or returns ErrNotFollowing.
	Unfollow(ctx context.Context, followerID, followedID string) error
	// IsFollowing reports whether the edge exists.
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	// Following lists the user IDs the given user follows.
	Following(ctx context.Context, followerID string) ([]string, error)
	// Followers lists the user IDs following the given user.
	Followers(ctx context.Context, followedID string) ([]string, error)
	// Counts returns (following, followers) for the given user.
	Counts(ctx context.Context, userID string) (int, int, error)
}

// InMemoryRepository is a thread-safe in-memory Repository.
type InMemoryRepository struct {
	mu sync.RWMutex
	// following maps follower ID to the set of followed IDs.
	following map[string]map[string]time.Time
}

// NewInMemoryRepository creates an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		following: make(map[string]map[string]time.Time),
	}
}

// Follow adds a follower→followed edge.
func (r *InMemoryRepository) Follow(_ context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.following[followerID]
	if !ok {
		set = make(map[string]time.Time)
		r.following[followerID] = set
	}
	if _, ok := set[followedID]; ok {
		return ErrAlreadyFollowing
	}
	set[followedID] = time.Now().UTC()
	return nil
}

// Unfollow removes a follower→followed edge.
func (r *InMemoryRepository) Unfollow(_ context.Context, followerID, followedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.following[followerID]
	if !ok {
		return ErrNotFollowing
	}
	if _, ok := set[followedID]; !ok {
		return ErrNotFollowing
	}
	delete(set, followedID)
	return nil
}

// IsFollowing reports whether followerID follows followedID.
func (r *InMemoryRepository) IsFollowing(_ context.Context, followerID, followedID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.following[followerID][followedID]
	return ok, nil
}

// Following lists the IDs followerID follows.
func (r *InMemoryRepository) Following(_ context.Context, followerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.following[followerID]))
	for id := range r.following[followerID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// Followers lists the IDs following followedID.
func (r *InMemoryRepository) Followers(_ context.Context, followedID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for follower, set := range r.following {
		if _, ok := set[followedID]; ok {
			ids = append(ids, follower)
		}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Counts returns how many users userID follows and is followed by.
func (r *InMemoryRepository) Counts(_ context.Context, userID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	following := len(r.following[userID])
	followers := 0
	for _, set := range r.following {
		if _, ok := set[userID]; ok {
			followers++
		}
	}
	return following, followers, nil
}
