package profile

import (
	"context"
	"errors"
	"testing"
)

func seedStore(t *testing.T, profiles ...*Profile) *InMemoryStore {
	t.Helper()
	s := NewInMemoryStore()
	for _, p := range profiles {
		if err := s.Upsert(context.Background(), p); err != nil {
			t.Fatalf("seed profile %s: %v", p.ID, err)
		}
	}
	return s
}

func TestResolveAll_BatchLookup(t *testing.T) {
	store := seedStore(t,
		&Profile{ID: "u1", Name: "Ayşe", Username: "ayse"},
		&Profile{ID: "u2", Name: "Mehmet", Username: "mehmet"},
	)
	r := NewResolver(store, nil)

	resolved, err := r.ResolveAll(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(resolved))
	}
	if resolved["u1"].Name != "Ayşe" {
		t.Errorf("expected u1 name Ayşe, got %s", resolved["u1"].Name)
	}
	if resolved["u2"].Username != "mehmet" {
		t.Errorf("expected u2 username mehmet, got %s", resolved["u2"].Username)
	}
}

func TestResolveAll_MissingProfileGetsDefaults(t *testing.T) {
	store := seedStore(t, &Profile{ID: "u1", Name: "Ayşe", Username: "ayse"})
	r := NewResolver(store, nil)

	resolved, err := r.ResolveAll(context.Background(), []string{"u1", "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	anon, ok := resolved["ghost"]
	if !ok {
		t.Fatal("expected a placeholder for the missing author")
	}
	if anon.Name != DefaultName {
		t.Errorf("expected name %q, got %q", DefaultName, anon.Name)
	}
	if anon.Username != DefaultUsername {
		t.Errorf("expected username %q, got %q", DefaultUsername, anon.Username)
	}
	if anon.ID != "ghost" {
		t.Errorf("expected placeholder ID ghost, got %s", anon.ID)
	}
}

func TestResolveAll_DeduplicatesAndSkipsEmpty(t *testing.T) {
	store := seedStore(t, &Profile{ID: "u1", Name: "Ayşe", Username: "ayse"})
	r := NewResolver(store, nil)

	resolved, err := r.ResolveAll(context.Background(), []string{"u1", "u1", "", "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(resolved))
	}
	if _, ok := resolved[""]; ok {
		t.Error("empty author ID must not produce an entry")
	}
}

func TestResolveAll_Empty(t *testing.T) {
	r := NewResolver(NewInMemoryStore(), nil)

	resolved, err := r.ResolveAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("expected empty map, got %d entries", len(resolved))
	}
}

// failingStore simulates a backing store outage.
type failingStore struct {
	err error
}

func (f *failingStore) GetByID(context.Context, string) (*Profile, error) {
	return nil, f.err
}

func (f *failingStore) GetByIDs(context.Context, []string) (map[string]Profile, error) {
	return nil, f.err
}

func (f *failingStore) Upsert(context.Context, *Profile) error { return f.err }
func (f *failingStore) Delete(context.Context, string) error   { return f.err }

func (f *failingStore) Search(context.Context, string, int) ([]Profile, error) {
	return nil, f.err
}

func TestResolveAll_StoreFailure(t *testing.T) {
	sentinel := errors.New("connection reset")
	r := NewResolver(&failingStore{err: sentinel}, nil)

	_, err := r.ResolveAll(context.Background(), []string{"u1"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestResolve_Single(t *testing.T) {
	store := seedStore(t, &Profile{ID: "u1", Name: "Ayşe", Username: "ayse"})
	r := NewResolver(store, nil)

	p, err := r.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ayşe" {
		t.Errorf("expected name Ayşe, got %s", p.Name)
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := seedStore(t, &Profile{ID: "u1", Name: "Ayşe", Username: "ayse"})

	if err := store.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetByID(context.Background(), "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSearch_NameAndUsername(t *testing.T) {
	store := seedStore(t,
		&Profile{ID: "u1", Name: "Ayşe Yılmaz", Username: "ayse"},
		&Profile{ID: "u2", Name: "Mehmet Kaya", Username: "mkaya"},
		&Profile{ID: "u3", Name: "Deniz", Username: "kayadeniz"},
	)

	// Matches name on one profile and username on another.
	got, err := store.Search(context.Background(), "kaya", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for kaya, got %d", len(got))
	}
	if got[0].Username != "kayadeniz" || got[1].Username != "mkaya" {
		t.Errorf("expected username-ordered results, got %q then %q", got[0].Username, got[1].Username)
	}

	// Case-insensitive.
	got, err = store.Search(context.Background(), "MEHMET", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "u2" {
		t.Fatalf("expected only u2 for MEHMET, got %d matches", len(got))
	}

	// No match is an empty result, not an error.
	got, err = store.Search(context.Background(), "yok", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestSearch_Limit(t *testing.T) {
	store := seedStore(t,
		&Profile{ID: "u1", Name: "Gezgin Bir", Username: "gezgin1"},
		&Profile{ID: "u2", Name: "Gezgin İki", Username: "gezgin2"},
		&Profile{ID: "u3", Name: "Gezgin Üç", Username: "gezgin3"},
	)

	got, err := store.Search(context.Background(), "gezgin", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected limit to cap the result at 2, got %d", len(got))
	}
}
