package health

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoChecker implements health checking for MongoDB.
type MongoChecker struct {
	client *mongo.Client
}

// NewMongoChecker creates a new MongoDB health checker.
func NewMongoChecker(client *mongo.Client) *MongoChecker {
	return &MongoChecker{
		client: client,
	}
}

// HealthCheck performs a health check on MongoDB by pinging the primary.
func (m *MongoChecker) HealthCheck(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}
