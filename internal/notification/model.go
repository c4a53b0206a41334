// Package notification records engagement events for users.
package notification

import "time"

// Type classifies what triggered a notification.
type Type string

const (
	TypeLike     Type = "like"
	TypeComment  Type = "comment"
	TypeFollow   Type = "follow"
	TypeBookmark Type = "bookmark"
	TypePost     Type = "post"
)

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	switch t {
	case TypeLike, TypeComment, TypeFollow, TypeBookmark, TypePost:
		return true
	}
	return false
}

// Notification is a single event delivered to a recipient.
type Notification struct {
	ID          string    `json:"id" bson:"_id"`
	RecipientID string    `json:"recipientId" bson:"recipient_id"`
	ActorID     string    `json:"actorId" bson:"actor_id"`
	ActorName   string    `json:"actorName,omitempty" bson:"actor_name,omitempty"`
	Type        Type      `json:"type" bson:"type"`
	PostID      string    `json:"postId,omitempty" bson:"post_id,omitempty"`
	Read        bool      `json:"read" bson:"read"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}
