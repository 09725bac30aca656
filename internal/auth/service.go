package auth

import (
	"context"
	"errors"
	"fmt"

	"bank-auth/db"
	"bank-auth/internal/metrics"
	"bank-auth/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrDatabase           = errors.New("database error")
)

// Credentials is the username/password pair posted by the signup and login forms
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Service struct {
	users    db.UserRepository
	scheme   Scheme
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(users db.UserRepository, scheme Scheme, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		scheme:   scheme,
		validate: validator.New(),
		logger:   logger,
	}
}

// Signup creates a user. Missing fields are rejected before the database is touched.
func (s *Service) Signup(ctx context.Context, creds Credentials) (*models.User, error) {
	if err := s.validate.Struct(creds); err != nil {
		metrics.SignupsTotal.WithLabelValues("missing_fields").Inc()
		return nil, ErrMissingFields
	}

	stored, err := s.scheme.hash(creds.Password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	user, err := s.users.Create(ctx, &models.User{Username: creds.Username, Password: stored})
	if err != nil {
		s.logger.Error("Signup failed", zap.String("username", creds.Username), zap.Error(err))
		if errors.Is(err, db.ErrDuplicateUser) {
			metrics.SignupsTotal.WithLabelValues("exists").Inc()
			return nil, fmt.Errorf("%w: %s", ErrUserExists, creds.Username)
		}
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login returns the session view of the user matching the credentials
func (s *Service) Login(ctx context.Context, creds Credentials) (*models.SessionUser, error) {
	if err := s.validate.Struct(creds); err != nil {
		metrics.LoginsTotal.WithLabelValues("missing_fields").Inc()
		return nil, ErrMissingFields
	}

	user, err := s.lookup(ctx, creds)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return nil, err
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Login query failed", zap.String("username", creds.Username), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user.SessionUser(), nil
}

func (s *Service) lookup(ctx context.Context, creds Credentials) (*models.User, error) {
	if s.scheme != Bcrypt {
		user, err := s.users.FindByCredentials(ctx, creds.Username, creds.Password)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return user, err
	}

	user, err := s.users.FindByUsername(ctx, creds.Username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.scheme.matches(user.Password, creds.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
