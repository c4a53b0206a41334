package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/teknoblog/teknoblog/internal/post"
)

// Candidate pool sizes. The pool is deliberately larger than any requested
// result size because the qualification filter commonly rejects most
// low-engagement posts. Category feeds fetch a deeper pool since the
// category narrows the candidate set before the threshold even applies.
const (
	PoolSize         = 100
	CategoryPoolSize = 150
)

// Store is the slice of the content store the engine reads from.
type Store interface {
	// ListByCreation returns up to limit posts ordered by creation time
	// descending, optionally narrowed to a category.
	ListByCreation(ctx context.Context, limit int, category string) ([]*post.Post, error)
}

// Engine ranks candidate posts by popularity. It holds no mutable state:
// every call fetches a fresh snapshot, scores it against the wall clock,
// and discards all derived values before returning.
type Engine struct {
	store   Store
	metrics *Metrics
	now     func() time.Time
}

// NewEngine creates an Engine reading candidates from store.
// metrics may be nil to disable instrumentation.
func NewEngine(store Store, metrics *Metrics) *Engine {
	return NewEngineWithClock(store, metrics, time.Now)
}

// NewEngineWithClock creates an Engine with an injected clock for
// deterministic evaluation in tests.
func NewEngineWithClock(store Store, metrics *Metrics, now func() time.Time) *Engine {
	return &Engine{
		store:   store,
		metrics: metrics,
		now:     now,
	}
}

// scoredPost pairs a candidate with its breakdown for the sort phase.
type scoredPost struct {
	post      *post.Post
	breakdown Breakdown
}

// PopularPosts returns the top limit posts by popularity score, optionally
// narrowed to a category ("" and "all" mean no filter).
//
// A store failure propagates to the caller unmodified (wrapped for
// context); the engine never retries. An empty result is a valid outcome,
// not an error: sparse categories frequently have no qualified post.
func (e *Engine) PopularPosts(ctx context.Context, limit int, category string) ([]*post.Post, error) {
	if limit <= 0 {
		return []*post.Post{}, nil
	}

	fetchLimit := PoolSize
	filtered := category != "" && category != post.CategoryAll
	if filtered {
		fetchLimit = CategoryPoolSize
	}

	start := time.Now()
	candidates, err := e.store.ListByCreation(ctx, fetchLimit, category)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	now := e.now()
	qualified := make([]scoredPost, 0, len(candidates))
	for _, p := range candidates {
		b := Score(p, now)
		if b.Engagement < MinEngagement {
			continue
		}
		qualified = append(qualified, scoredPost{post: p, breakdown: b})
	}

	// Popularity descending. Equal scores break to the newer post, then
	// to ID ascending so that repeated calls over the same snapshot
	// return an identical ordering.
	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].breakdown.Popularity != qualified[j].breakdown.Popularity {
			return qualified[i].breakdown.Popularity > qualified[j].breakdown.Popularity
		}
		if !qualified[i].post.CreatedAt.Equal(qualified[j].post.CreatedAt) {
			return qualified[i].post.CreatedAt.After(qualified[j].post.CreatedAt)
		}
		return qualified[i].post.ID < qualified[j].post.ID
	})

	if len(qualified) > limit {
		qualified = qualified[:limit]
	}

	// Callers receive plain posts; the breakdowns die here.
	results := make([]*post.Post, len(qualified))
	for i, sp := range qualified {
		results[i] = sp.post
	}

	e.metrics.observeRanking(metricCategory(category), len(candidates), len(qualified), time.Since(start))

	return results, nil
}

// metricCategory normalizes the category label for metrics: the empty
// filter and the "all" wildcard collapse into one label.
func metricCategory(category string) string {
	if category == "" {
		return post.CategoryAll
	}
	return category
}
