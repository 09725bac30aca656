package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
)

// MongoHandle is a lazily connected MongoDB client bound to one database
type MongoHandle struct {
	Client   *mongo.Client
	Database string
}

// OpenMongo creates the client; the driver dials in the background, so this never blocks on the server
func OpenMongo(uri, database string, maxPoolSize int) (*MongoHandle, error) {
	opts := options.Client().ApplyURI(uri).SetMaxPoolSize(uint64(maxPoolSize))
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	return &MongoHandle{Client: client, Database: database}, nil
}

// Ping checks that the primary is reachable
func (h *MongoHandle) Ping(ctx context.Context) error {
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// EnsureSchema creates the unique username index; creating an existing index is a no-op
func (h *MongoHandle) EnsureSchema(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := h.Client.Database(h.Database).Collection(usersCollection).Indexes().CreateOne(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (h *MongoHandle) Close() error {
	return h.Client.Disconnect(context.Background())
}
