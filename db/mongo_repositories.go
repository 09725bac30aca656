package db

import (
	"context"
	"errors"
	"fmt"

	"bank-auth/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the UserRepository interface for MongoDB
type MongoUserRepository struct {
	client   *mongo.Client
	database string
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(client *mongo.Client, database string) *MongoUserRepository {
	return &MongoUserRepository{client: client, database: database}
}

func (r *MongoUserRepository) users() *mongo.Collection {
	return r.client.Database(r.database).Collection(usersCollection)
}

// nextID hands out integer ids from the counters collection
func (r *MongoUserRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.client.Database(r.database).Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": usersCollection}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error allocating user id: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new user and fills in its id
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if _, err := r.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("error creating user: %w", ErrDuplicateUser)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// FindByCredentials finds a user whose username and password both match
func (r *MongoUserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username, "password": password})
}

// FindByUsername finds a user by username
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.users().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}
