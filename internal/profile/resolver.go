package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how stale a cached profile can get. Feed
// decoration tolerates slightly stale names and avatars.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "profile:"

// Resolver resolves author IDs to profiles in batches, with an optional
// Redis read-through cache in front of the Store. A cache failure is
// logged and the lookup falls through to the store; the cache never
// makes a resolve fail.
type Resolver struct {
	store Store
	cache *redis.Client
	ttl   time.Duration
}

// NewResolver creates a Resolver. cache may be nil to disable caching.
func NewResolver(store Store, cache *redis.Client) *Resolver {
	return &Resolver{
		store: store,
		cache: cache,
		ttl:   DefaultCacheTTL,
	}
}

// Resolve returns the profile for a single author ID, falling back to
// the anonymous placeholder when no profile exists.
func (r *Resolver) Resolve(ctx context.Context, id string) (Profile, error) {
	resolved, err := r.ResolveAll(ctx, []string{id})
	if err != nil {
		return Profile{}, err
	}
	return resolved[id], nil
}

// ResolveAll resolves the given author IDs in one pass. Every requested
// ID is present in the result: authors without a profile map to the
// anonymous placeholder. Duplicate IDs are looked up once.
func (r *Resolver) ResolveAll(ctx context.Context, ids []string) (map[string]Profile, error) {
	resolved := make(map[string]Profile, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	pending := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		pending = append(pending, id)
	}

	pending = r.fromCache(ctx, pending, resolved)

	if len(pending) > 0 {
		found, err := r.store.GetByIDs(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("resolve profiles: %w", err)
		}
		for id, p := range found {
			resolved[id] = p
		}
		r.fillCache(ctx, found)
	}

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := resolved[id]; !ok {
			resolved[id] = Anonymous(id)
		}
	}
	return resolved, nil
}

// fromCache moves cache hits into resolved and returns the IDs still to
// be fetched from the store.
func (r *Resolver) fromCache(ctx context.Context, ids []string, resolved map[string]Profile) []string {
	if r.cache == nil || len(ids) == 0 {
		return ids
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKeyPrefix + id
	}

	values, err := r.cache.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Warn("profile cache read failed, falling back to store", "error", err)
		return ids
	}

	missed := make([]string, 0, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missed = append(missed, ids[i])
			continue
		}
		var p Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			slog.Warn("profile cache entry corrupt, refetching", "id", ids[i], "error", err)
			missed = append(missed, ids[i])
			continue
		}
		resolved[ids[i]] = p
	}
	return missed
}

// fillCache writes freshly fetched profiles back to the cache, best effort.
func (r *Resolver) fillCache(ctx context.Context, profiles map[string]Profile) {
	if r.cache == nil || len(profiles) == 0 {
		return
	}

	pipe := r.cache.Pipeline()
	for id, p := range profiles {
		raw, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKeyPrefix+id, raw, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("profile cache write failed", "error", err)
	}
}
