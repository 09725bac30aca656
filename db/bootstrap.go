package db

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"bank-auth/internal/config"
	"bank-auth/internal/metrics"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var ErrBootstrapExhausted = errors.New("could not connect to database")

// RetryPolicy controls how the bootstrapper waits between connection attempts
type RetryPolicy struct {
	Delay time.Duration
	// MaxRetries of 0 retries forever
	MaxRetries  uint64
	Exponential bool
	// MaxDelay caps exponential backoff; zero leaves it uncapped
	MaxDelay time.Duration
}

// NewRetryPolicy builds the policy from DB_RETRY_* settings
func NewRetryPolicy(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		Delay:       cfg.RetryDelay,
		MaxRetries:  uint64(cfg.RetryMax),
		Exponential: cfg.RetryBackoff == config.BackoffExponential,
		MaxDelay:    cfg.RetryMaxDelay,
	}
}

func (p RetryPolicy) backoff() retry.Backoff {
	var b retry.Backoff
	if p.Exponential {
		b = retry.NewExponential(p.Delay)
		if p.MaxDelay > 0 {
			b = retry.WithCappedDuration(p.MaxDelay, b)
		}
	} else {
		b = retry.NewConstant(p.Delay)
	}

	if p.MaxRetries > 0 {
		b = retry.WithMaxRetries(p.MaxRetries, b)
	}
	return b
}

// Bootstrapper waits for the database to become reachable and then prepares the schema
type Bootstrapper struct {
	handle Handle
	policy RetryPolicy
	logger *zap.Logger
	ready  atomic.Bool
}

// NewBootstrapper creates a new Bootstrapper
func NewBootstrapper(handle Handle, policy RetryPolicy, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		handle: handle,
		policy: policy,
		logger: logger,
	}
}

// Run blocks until the database answers a ping, the retry budget is spent, or ctx is done.
// A failing schema statement is logged and does not fail the bootstrap.
func (b *Bootstrapper) Run(ctx context.Context) error {
	attempt := uint64(0)
	err := retry.Do(ctx, b.policy.backoff(), func(ctx context.Context) error {
		attempt++
		metrics.BootstrapAttempts.Inc()

		if err := b.handle.Ping(ctx); err != nil {
			b.logger.Error("Database connection failed", zap.Uint64("attempt", attempt), zap.Error(err))
			if b.policy.MaxRetries == 0 {
				b.logger.Info("Retrying database connection")
			} else if left := b.policy.MaxRetries - (attempt - 1); left > 0 {
				b.logger.Info("Retrying database connection", zap.Uint64("retries_left", left))
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.logger.Error("Could not connect to database, giving up", zap.Uint64("attempts", attempt))
		return fmt.Errorf("%w after %d attempts: %v", ErrBootstrapExhausted, attempt, err)
	}

	b.logger.Info("Connected to database", zap.Uint64("attempts", attempt))
	b.ready.Store(true)
	metrics.DatabaseReady.Set(1)

	if err := b.handle.EnsureSchema(ctx); err != nil {
		b.logger.Error("Table creation failed", zap.Error(err))
	} else {
		b.logger.Info("Users table ready")
	}
	return nil
}

// Ready reports whether the database has been reached
func (b *Bootstrapper) Ready() bool {
	return b.ready.Load()
}
