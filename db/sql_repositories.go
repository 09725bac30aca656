package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-auth/internal/util"
	"bank-auth/models"
)

// SQLUserRepository implements the UserRepository interface for MySQL, SQLite and PostgreSQL
type SQLUserRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLUserRepository creates a new SQLUserRepository
func NewSQLUserRepository(db *sql.DB, dialect Dialect) *SQLUserRepository {
	return &SQLUserRepository{db: db, dialect: dialect}
}

// Create inserts a new user and fills in its id
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if r.dialect.ReturningID {
		query := r.dialect.Rebind(`INSERT INTO users (username, password) VALUES (?, ?) RETURNING id`)
		err := r.db.QueryRowContext(ctx, query, user.Username, user.Password).Scan(&user.ID)
		if err != nil {
			return nil, r.insertError(err)
		}
		return user, nil
	}

	query := r.dialect.Rebind(`INSERT INTO users (username, password) VALUES (?, ?)`)
	result, err := util.RetryOnLockWithResult(func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, user.Username, user.Password)
	})
	if err != nil {
		return nil, r.insertError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading user id: %w", err)
	}
	user.ID = id
	return user, nil
}

// FindByCredentials finds the first user whose username and password both match.
// The comparison happens in the database.
func (r *SQLUserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	query := r.dialect.Rebind(`SELECT id, username, password FROM users WHERE username = ? AND password = ? LIMIT 1`)
	return r.findOne(ctx, query, username, password)
}

// FindByUsername finds a user by username
func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.dialect.Rebind(`SELECT id, username, password FROM users WHERE username = ? LIMIT 1`)
	return r.findOne(ctx, query, username)
}

func (r *SQLUserRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	return util.RetryOnLockWithResult(func() (*models.User, error) {
		var user models.User
		err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &user.Password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		return &user, nil
	})
}

func (r *SQLUserRepository) insertError(err error) error {
	if r.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("error creating user: %w", ErrDuplicateUser)
	}
	return fmt.Errorf("error creating user: %w", err)
}
