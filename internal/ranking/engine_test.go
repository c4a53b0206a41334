package ranking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/teknoblog/teknoblog/internal/post"
)

// stubStore is a canned candidate source for engine tests.
type stubStore struct {
	posts     []*post.Post
	err       error
	lastLimit int
	lastCat   string
}

func (s *stubStore) ListByCreation(_ context.Context, limit int, category string) ([]*post.Post, error) {
	s.lastLimit = limit
	s.lastCat = category
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.posts) {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func likers(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
	}
	return ids
}

func TestPopularPosts_ThresholdExcludesWeakPosts(t *testing.T) {
	now := time.Now()
	store := &stubStore{posts: []*post.Post{
		{ID: "weak", Likes: likers(1), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "qualified", Likes: likers(2), CreatedAt: now.Add(-2 * time.Hour)},
	}}

	engine := NewEngineWithClock(store, nil, fixedClock(now))
	got, err := engine.PopularPosts(context.Background(), 10, post.CategoryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 post, got %d", len(got))
	}
	if got[0].ID != "qualified" {
		t.Errorf("expected post qualified, got %s", got[0].ID)
	}
}

func TestPopularPosts_EmptyResultIsNotAnError(t *testing.T) {
	now := time.Now()
	store := &stubStore{posts: []*post.Post{
		{ID: "p1", Likes: likers(1), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "p2", CreatedAt: now.Add(-2 * time.Hour)},
	}}

	engine := NewEngineWithClock(store, nil, fixedClock(now))
	got, err := engine.PopularPosts(context.Background(), 10, post.CategoryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d posts", len(got))
	}
}

func TestPopularPosts_TruncatesToLimit(t *testing.T) {
	now := time.Now()
	store := &stubStore{}
	for i := 0; i < 20; i++ {
		store.posts = append(store.posts, &post.Post{
			ID:        fmt.Sprintf("p%02d", i),
			Likes:     likers(i + 2),
			CreatedAt: now.Add(-48 * time.Hour),
		})
	}

	engine := NewEngineWithClock(store, nil, fixedClock(now))
	got, err := engine.PopularPosts(context.Background(), 5, post.CategoryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 posts, got %d", len(got))
	}

	// Highest like counts first: p19 down to p15.
	for i, want := range []string{"p19", "p18", "p17", "p16", "p15"} {
		if got[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestPopularPosts_ViralOrdering(t *testing.T) {
	now := time.Now()
	store := &stubStore{posts: []*post.Post{
		{ID: "older", Likes: likers(10), CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "younger", Comments: 4, CreatedAt: now.Add(-3 * time.Hour)},
	}}

	engine := NewEngineWithClock(store, nil, fixedClock(now))
	got, err := engine.PopularPosts(context.Background(), 10, post.CategoryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(got))
	}
	if got[0].ID != "younger" || got[1].ID != "older" {
		t.Errorf("expected [younger older], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestPopularPosts_TieBreakNewestFirst(t *testing.T) {
	now := time.Now()
	store := &stubStore{posts: []*post.Post{
		{ID: "earlier", Likes: likers(5), CreatedAt: now.Add(-20 * time.Hour)},
		{ID: "later", Likes: likers(5), CreatedAt: now.Add(-10 * time.Hour)},
	}}

	engine := NewEngineWithClock(store, nil, fixedClock(now))
	got, err := engine.PopularPosts(context.Background(), 10, post.CategoryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "later" || got[1].ID != "earlier" {
		t.Errorf("expected [later earlier], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestPopularPosts_PoolSizes(t *testing.T) {
	now := time.Now()
	engine := NewEngineWithClock(&stubStore{}, nil, fixedClock(now))

	tests := []struct {
		name      string
		category  string
		wantLimit int
		wantCat   string
	}{
		{name: "all posts", category: post.CategoryAll, wantLimit: PoolSize, wantCat: post.CategoryAll},
		{name: "empty category means all", category: "", wantLimit: PoolSize, wantCat: ""},
		{name: "category filter widens the pool", category: "Python", wantLimit: CategoryPoolSize, wantCat: "Python"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{}
			engine = NewEngineWithClock(store, nil, fixedClock(now))
			if _, err := engine.PopularPosts(context.Background(), 10, tt.category); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.lastLimit != tt.wantLimit {
				t.Errorf("expected fetch limit %d, got %d", tt.wantLimit, store.lastLimit)
			}
			if store.lastCat != tt.wantCat {
				t.Errorf("expected category %q, got %q", tt.wantCat, store.lastCat)
			}
		})
	}
}

func TestPopularPosts_NonPositiveLimit(t *testing.T) {
	store := &stubStore{posts: []*post.Post{
		{ID: "p1", Likes: likers(5), CreatedAt: time.Now().Add(-2 * time.Hour)},
	}}

	engine := NewEngine(store, nil)
	got, err := engine.PopularPosts(context.Background(), 0, post.CategoryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no posts for zero limit, got %d", len(got))
	}
	if store.lastLimit != 0 {
		t.Errorf("expected no store fetch for zero limit, recorded limit %d", store.lastLimit)
	}
}

func TestPopularPosts_StoreFailure(t *testing.T) {
	sentinel := errors.New("connection refused")
	store := &stubStore{err: sentinel}

	engine := NewEngine(store, nil)
	_, err := engine.PopularPosts(context.Background(), 10, post.CategoryAll)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
