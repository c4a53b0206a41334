package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the MongoDB collection holding user profiles.
const UsersCollection = "users"

// MongoStore is a Store backed by a MongoDB collection.
type MongoStore struct {
	users *mongo.Collection
}

// NewMongoStore creates a MongoStore on the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{users: db.Collection(UsersCollection)}
}

// GetByID returns the profile with the given ID.
func (s *MongoStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// GetByIDs returns the profiles that exist for the given IDs.
func (s *MongoStore) GetByIDs(ctx context.Context, ids []string) (map[string]Profile, error) {
	if len(ids) == 0 {
		return map[string]Profile{}, nil
	}

	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	found := make(map[string]Profile, len(ids))
	for cursor.Next(ctx) {
		var p Profile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		found[p.ID] = p
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return found, nil
}

// Search returns profiles whose name or username contains the query,
// case-insensitively. The query is treated as a literal, never as a
// pattern.
func (s *MongoStore) Search(ctx context.Context, query string, limit int) ([]Profile, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"username": pattern},
	}}

	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer cursor.Close(ctx)

	result := []Profile{}
	for cursor.Next(ctx) {
		var p Profile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		result = append(result, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return result, nil
}

// Upsert creates or replaces a profile.
func (s *MongoStore) Upsert(ctx context.Context, p *Profile) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.users.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, opts); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Delete removes the profile with the given ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
