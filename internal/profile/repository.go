package profile

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Store provides access to user profiles.
type Store interface {
	// GetByID returns a single profile or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Profile, error)
	// GetByIDs returns the profiles that exist for the given IDs, keyed by
	// ID. Missing IDs are simply absent from the map, not an error.
	GetByIDs(ctx context.Context, ids []string) (map[string]Profile, error)
	// Search returns up to limit profiles whose name or username contains
	// the query, case-insensitively.
	Search(ctx context.Context, query string, limit int) ([]Profile, error)
	// Upsert creates or replaces a profile.
	Upsert(ctx context.Context, p *Profile) error
	// Delete removes a profile. Deleting a missing profile returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// InMemoryStore is a thread-safe in-memory Store.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]*Profile),
	}
}

// GetByID returns a copy of the profile with the given ID.
func (s *InMemoryStore) GetByID(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetByIDs returns copies of the profiles that exist for the given IDs.
func (s *InMemoryStore) GetByIDs(_ context.Context, ids []string) (map[string]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			found[id] = *p
		}
	}
	return found, nil
}

// Search returns profiles matching the query by name or username. Results
// are ordered by username for a stable response.
func (s *InMemoryStore) Search(_ context.Context, query string, limit int) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var result []Profile
	for _, p := range s.profiles {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Username), q) {
			result = append(result, *p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	if result == nil {
		result = []Profile{}
	}
	return result, nil
}

// Upsert stores a copy of the given profile.
func (s *InMemoryStore) Upsert(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

// Delete removes the profile with the given ID.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}
