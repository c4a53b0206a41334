package notification

import (
	"context"
	"fmt"
)

// Service applies the delivery rules on top of a Repository: users never
// get notified about their own actions, and repeated follow events from
// the same actor collapse into one unread notification.
type Service struct {
	repo Repository
}

// NewService creates a Service on the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify delivers a notification. Self-notifications and duplicate unread
// follow notifications are silently dropped; nil means delivered or
// deliberately dropped.
func (s *Service) Notify(ctx context.Context, n *Notification) error {
	if !n.Type.Valid() {
		return fmt.Errorf("invalid notification type %q", n.Type)
	}
	if n.ActorID == n.RecipientID {
		return nil
	}

	if n.Type == TypeFollow {
		exists, err := s.repo.HasUnread(ctx, n.RecipientID, n.ActorID, TypeFollow)
		if err != nil {
			return fmt.Errorf("check duplicate follow notification: %w", err)
		}
		if exists {
			return nil
		}
	}

	return s.repo.Create(ctx, n)
}

// List returns up to limit notifications for the recipient, newest first.
func (s *Service) List(ctx context.Context, recipientID string, limit int) ([]*Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, limit)
}

// MarkRead marks one notification of the recipient read.
func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	return s.repo.MarkRead(ctx, recipientID, notificationID)
}

// MarkAllRead marks every notification of the recipient read.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

// UnreadCount returns the recipient's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.repo.UnreadCount(ctx, recipientID)
}
