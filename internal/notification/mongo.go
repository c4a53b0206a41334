package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationsCollection is the MongoDB collection holding notifications.
const NotificationsCollection = "notifications"

// MongoRepository is a Repository backed by a MongoDB collection.
type MongoRepository struct {
	notifications *mongo.Collection
}

// NewMongoRepository creates a MongoRepository on the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{notifications: db.Collection(NotificationsCollection)}
}

// EnsureIndexes creates the indexes the repository relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure notification indexes: %w", err)
	}
	return nil
}

// Create stores the notification, assigning ID and CreatedAt when unset.
func (r *MongoRepository) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := r.notifications.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns up to limit notifications, newest first.
func (r *MongoRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.notifications.Find(ctx, bson.M{"recipient_id": recipientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	result := []*Notification{}
	for cursor.Next(ctx) {
		var n Notification
		if err := cursor.Decode(&n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		result = append(result, &n)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return result, nil
}

// HasUnread reports whether an unread notification matching the triple exists.
func (r *MongoRepository) HasUnread(ctx context.Context, recipientID, actorID string, t Type) (bool, error) {
	filter := bson.M{
		"recipient_id": recipientID,
		"actor_id":     actorID,
		"type":         t,
		"read":         false,
	}
	err := r.notifications.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check unread notification: %w", err)
	}
	return true, nil
}

// MarkRead marks one notification of the recipient read.
func (r *MongoRepository) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	res, err := r.notifications.UpdateOne(ctx,
		bson.M{"_id": notificationID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient read.
func (r *MongoRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	res, err := r.notifications.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(res.ModifiedCount), nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (r *MongoRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	count, err := r.notifications.CountDocuments(ctx, bson.M{
		"recipient_id": recipientID,
		"read":         false,
	})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return int(count), nil
}
