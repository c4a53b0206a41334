package notification

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNotify_SkipsSelfNotification(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	err := svc.Notify(ctx, &Notification{
		RecipientID: "u1",
		ActorID:     "u1",
		Type:        TypeLike,
		PostID:      "p1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := svc.List(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no notifications for a self-action, got %d", len(list))
	}
}

func TestNotify_DeduplicatesUnreadFollows(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	first := &Notification{RecipientID: "u1", ActorID: "u2", Type: TypeFollow}
	if err := svc.Notify(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Notify(ctx, &Notification{RecipientID: "u1", ActorID: "u2", Type: TypeFollow}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := svc.List(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 follow notification, got %d", len(list))
	}

	// Once read, a fresh follow event notifies again.
	if err := svc.MarkRead(ctx, "u1", first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Notify(ctx, &Notification{RecipientID: "u1", ActorID: "u2", Type: TypeFollow}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err = svc.List(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 follow notifications after read, got %d", len(list))
	}
}

func TestNotify_LikesFromDifferentActors(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	for _, actor := range []string{"u2", "u3", "u4"} {
		err := svc.Notify(ctx, &Notification{
			RecipientID: "u1",
			ActorID:     actor,
			Type:        TypeLike,
			PostID:      "p1",
		})
		if err != nil {
			t.Fatalf("notify from %s failed: %v", actor, err)
		}
	}

	count, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 unread notifications, got %d", count)
	}
}

func TestNotify_InvalidType(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	err := svc.Notify(context.Background(), &Notification{
		RecipientID: "u1",
		ActorID:     "u2",
		Type:        Type("shout"),
	})
	if err == nil {
		t.Error("expected an error for an unknown notification type")
	}
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := &Notification{
			ID:          string(rune('a' + i)),
			RecipientID: "u1",
			ActorID:     "u2",
			Type:        TypeComment,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	list, err := repo.ListByRecipient(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(list))
	}
	for i, want := range []string{"e", "d", "c"} {
		if list[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, list[i].ID)
		}
	}
}

func TestMarkAllRead(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	for _, actor := range []string{"u2", "u3"} {
		if err := svc.Notify(ctx, &Notification{RecipientID: "u1", ActorID: actor, Type: TypeBookmark, PostID: "p1"}); err != nil {
			t.Fatalf("notify failed: %v", err)
		}
	}

	changed, err := svc.MarkAllRead(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 2 {
		t.Errorf("expected 2 notifications marked, got %d", changed)
	}

	count, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 unread, got %d", count)
	}
}

func TestMarkRead_WrongRecipient(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	n := &Notification{RecipientID: "u1", ActorID: "u2", Type: TypeLike, PostID: "p1"}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.MarkRead(ctx, "u2", n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign notification, got %v", err)
	}
}
