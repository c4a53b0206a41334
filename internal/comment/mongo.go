package comment

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

// CommentsCollection is the MongoDB collection holding comments.
const CommentsCollection = "comments"

// MongoRepository is a Repository backed by a MongoDB collection.
type MongoRepository struct {
	comments *mongo.Collection
}

// NewMongoRepository creates a MongoRepository on the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{comments: db.Collection(CommentsCollection)}
}

// EnsureIndexes creates the indexes the repository relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure comment indexes: %w", err)
	}
	return nil
}

// Create stores the comment, assigning ID and CreatedAt when unset.
func (r *MongoRepository) Create(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := r.comments.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListByPost returns up to limit comments on the post, newest first.
func (r *MongoRepository) ListByPost(ctx context.Context, postID string, limit int) ([]*Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.comments.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cursor.Close(ctx)

	result := []*Comment{}
	for cursor.Next(ctx) {
		var c Comment
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		result = append(result, &c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return result, nil
}

// GetByID returns the comment with the given ID.
func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// Delete removes one comment of the post.
func (r *MongoRepository) Delete(ctx context.Context, postID, commentID string) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": commentID, "post_id": postID})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByPost removes every comment on the post.
func (r *MongoRepository) DeleteByPost(ctx context.Context, postID string) (int, error) {
	res, err := r.comments.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, fmt.Errorf("delete comments by post: %w", err)
	}
	return int(res.DeletedCount), nil
}
