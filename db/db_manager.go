package db

import (
	"context"
	"errors"
	"sync"

	"bank-auth/models"

	"go.uber.org/zap"
)

var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager manages serialized access to the database
type DBManager struct {
	opQueue  chan Operation
	stopping chan struct{}
	stopOnce sync.Once
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:  make(chan Operation, 100),
		stopping: make(chan struct{}),
	}

	// Start the worker goroutine
	go m.worker()
	zap.L().Info("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case <-m.stopping:
			return
		default:
		}

		select {
		case op := <-m.opQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation queues an operation and waits for its result
func (m *DBManager) ExecuteOperation(execute func() (interface{}, error)) (interface{}, error) {
	select {
	case <-m.stopping:
		return nil, ErrManagerStopped
	default:
	}

	resultChan := make(chan OperationResult, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return nil, ErrManagerStopped
	}

	select {
	case result := <-resultChan:
		return result.Data, result.Error
	case <-m.stopping:
		return nil, ErrManagerStopped
	}
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopping)
	})
}

// SerializedUserRepository runs every call of the wrapped repository on the manager's worker
type SerializedUserRepository struct {
	repo    UserRepository
	manager *DBManager
}

// NewSerializedUserRepository creates a new SerializedUserRepository
func NewSerializedUserRepository(repo UserRepository, manager *DBManager) *SerializedUserRepository {
	return &SerializedUserRepository{repo: repo, manager: manager}
}

func (r *SerializedUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return r.userOperation(func() (*models.User, error) {
		return r.repo.Create(ctx, user)
	})
}

func (r *SerializedUserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return r.userOperation(func() (*models.User, error) {
		return r.repo.FindByCredentials(ctx, username, password)
	})
}

func (r *SerializedUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.userOperation(func() (*models.User, error) {
		return r.repo.FindByUsername(ctx, username)
	})
}

func (r *SerializedUserRepository) userOperation(op func() (*models.User, error)) (*models.User, error) {
	result, err := r.manager.ExecuteOperation(func() (interface{}, error) {
		return op()
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}
