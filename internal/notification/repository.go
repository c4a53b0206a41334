package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a notification does not exist.
var ErrNotFound = errors.New("notification not found")

// Repository provides access to stored notifications.
type Repository interface {
	// Create stores a notification, assigning ID and CreatedAt when unset.
	Create(ctx context.Context, n *Notification) error
	// ListByRecipient returns up to limit notifications for a recipient,
	// newest first.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error)
	// HasUnread reports whether an unread notification of the given type
	// from the given actor already exists for the recipient.
	HasUnread(ctx context.Context, recipientID, actorID string, t Type) (bool, error)
	// MarkRead marks a single notification read.
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	// MarkAllRead marks every notification of the recipient read and
	// returns how many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	// UnreadCount returns the number of unread notifications.
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// InMemoryRepository is a thread-safe in-memory Repository.
type InMemoryRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewInMemoryRepository creates an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		notifications: make(map[string]*Notification),
	}
}

// Create stores a copy of the notification.
func (r *InMemoryRepository) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *n
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.notifications[cp.ID] = &cp

	n.ID = cp.ID
	n.CreatedAt = cp.CreatedAt
	return nil
}

// ListByRecipient returns copies of the recipient's notifications, newest first.
func (r *InMemoryRepository) ListByRecipient(_ context.Context, recipientID string, limit int) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			cp := *n
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
		result = []*Notification{}
	}
	return result, nil
}

// HasUnread reports whether an unread notification matching the triple exists.
func (r *InMemoryRepository) HasUnread(_ context.Context, recipientID, actorID string, t Type) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.notifications {
		if !n.Read && n.RecipientID == recipientID && n.ActorID == actorID && n.Type == t {
			return true, nil
		}
	}
	return false, nil
}

// MarkRead marks one notification read. The recipient scope prevents a
// user from acknowledging another user's notification.
func (r *InMemoryRepository) MarkRead(_ context.Context, recipientID, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[notificationID]
	if !ok || n.RecipientID != recipientID {
		return ErrNotFound
	}
	n.Read = true
	return nil
}

// MarkAllRead marks every unread notification of the recipient read.
func (r *InMemoryRepository) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (r *InMemoryRepository) UnreadCount(_ context.Context, recipientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}
