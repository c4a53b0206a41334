package follow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowsCollection is the MongoDB collection holding follow edges.
const FollowsCollection = "follows"

// MongoRepository is a Repository backed by a MongoDB collection with a
// unique (follower_id, followed_id) index.
type MongoRepository struct {
	follows *mongo.Collection
}

// NewMongoRepository creates a MongoRepository on the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{follows: db.Collection(FollowsCollection)}
}

// EnsureIndexes creates the indexes the repository relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.follows.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "followed_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "followed_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure follow indexes: %w", err)
	}
	return nil
}

// Follow adds a follower→followed edge.
func (r *MongoRepository) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	edge := Edge{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := r.follows.InsertOne(ctx, edge)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyFollowing
	}
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

// Unfollow removes a follower→followed edge.
func (r *MongoRepository) Unfollow(ctx context.Context, followerID, followedID string) error {
	res, err := r.follows.DeleteOne(ctx, edgeFilter(followerID, followedID))
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFollowing
	}
	return nil
}

// IsFollowing reports whether followerID follows followedID.
func (r *MongoRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	err := r.follows.FindOne(ctx, edgeFilter(followerID, followedID)).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return true, nil
}

// Following lists the IDs followerID follows.
func (r *MongoRepository) Following(ctx context.Context, followerID string) ([]string, error) {
	return r.edgeIDs(ctx, bson.M{"follower_id": followerID}, "followed_id")
}

// Followers lists the IDs following followedID.
func (r *MongoRepository) Followers(ctx context.Context, followedID string) ([]string, error) {
	return r.edgeIDs(ctx, bson.M{"followed_id": followedID}, "follower_id")
}

// Counts returns how many users userID follows and is followed by.
func (r *MongoRepository) Counts(ctx context.Context, userID string) (int, int, error) {
	following, err := r.follows.CountDocuments(ctx, bson.M{"follower_id": userID})
	if err != nil {
		return 0, 0, fmt.Errorf("count following: %w", err)
	}
	followers, err := r.follows.CountDocuments(ctx, bson.M{"followed_id": userID})
	if err != nil {
		return 0, 0, fmt.Errorf("count followers: %w", err)
	}
	return int(following), int(followers), nil
}

func (r *MongoRepository) edgeIDs(ctx context.Context, filter bson.M, field string) ([]string, error) {
	cursor, err := r.follows.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list follow edges: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var edge Edge
		if err := cursor.Decode(&edge); err != nil {
			return nil, fmt.Errorf("decode follow edge: %w", err)
		}
		if field == "followed_id" {
			ids = append(ids, edge.FollowedID)
		} else {
			ids = append(ids, edge.FollowerID)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list follow edges: %w", err)
	}
	return ids, nil
}

func edgeFilter(followerID, followedID string) bson.M {
	return bson.M{"follower_id": followerID, "followed_id": followedID}
}
