package db

import (
	"context"
	"errors"

	"bank-auth/internal/config"
	"bank-auth/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateUser = errors.New("username already exists")
)

// UserRepository defines the interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Handle is an opened database that the bootstrapper can probe and prepare
type Handle interface {
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	Close() error
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	SQL   *SQLHandle
	Mongo *MongoHandle
	// Manager serializes repository calls in single-connection mode
	Manager *DBManager
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqlHandle *SQLHandle, mongoHandle *MongoHandle, manager *DBManager) *RepositoryFactory {
	return &RepositoryFactory{
		SQL:     sqlHandle,
		Mongo:   mongoHandle,
		Manager: manager,
	}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	var repo UserRepository
	if f.SQL != nil {
		repo = NewSQLUserRepository(f.SQL.DB, f.SQL.Dialect)
	} else {
		repo = NewMongoUserRepository(f.Mongo.Client, f.Mongo.Database)
	}

	if f.Manager != nil {
		return NewSerializedUserRepository(repo, f.Manager)
	}
	return repo
}

// Handle returns whichever database handle the factory was built on
func (f *RepositoryFactory) Handle() Handle {
	if f.SQL != nil {
		return f.SQL
	}
	return f.Mongo
}

// Close stops the serializing worker, if any, and closes the handle
func (f *RepositoryFactory) Close() error {
	if f.Manager != nil {
		f.Manager.Stop()
	}
	return f.Handle().Close()
}

// Connect opens the configured database without waiting for it to be reachable
func Connect(cfg *config.Config) (*RepositoryFactory, error) {
	var manager *DBManager
	if cfg.PoolMode == config.PoolModeSingle {
		manager = NewDBManager()
	}

	if cfg.DatabaseType == config.MongoDB {
		handle, err := OpenMongo(cfg.MongoURI, cfg.DatabaseName, cfg.MaxOpenConns())
		if err != nil {
			stopManager(manager)
			return nil, err
		}
		return NewRepositoryFactory(nil, handle, manager), nil
	}

	dialect, err := DialectFor(cfg.DatabaseType)
	if err != nil {
		stopManager(manager)
		return nil, err
	}
	dsn, err := DSN(cfg)
	if err != nil {
		stopManager(manager)
		return nil, err
	}
	handle, err := OpenSQL(dialect, dsn, cfg.MaxOpenConns())
	if err != nil {
		stopManager(manager)
		return nil, err
	}
	return NewRepositoryFactory(handle, nil, manager), nil
}

func stopManager(m *DBManager) {
	if m != nil {
		m.Stop()
	}
}
