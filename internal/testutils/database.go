package testutils

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bank-auth/db"
	"bank-auth/internal/config"

	"github.com/stretchr/testify/require"
)

// SetupTestDatabase opens a SQLite file in a temp dir with the users table in place
func SetupTestDatabase(t *testing.T) *db.SQLHandle {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	handle, err := db.OpenSQL(db.SQLiteDialect, dbPath+"?_journal_mode=WAL&_timeout=10000", 1)
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	require.NoError(t, handle.EnsureSchema(context.Background()))
	return handle
}

// SetupTestUserRepository returns a SQLite-backed user repository and its handle
func SetupTestUserRepository(t *testing.T) (db.UserRepository, *db.SQLHandle) {
	t.Helper()
	handle := SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(handle, nil, nil)
	return factory.NewUserRepository(), handle
}

// CountUsers counts rows with the given username
func CountUsers(t *testing.T, handle *db.SQLHandle, username string) int {
	t.Helper()
	var n int
	err := handle.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	require.NoError(t, err)
	return n
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Host:           "127.0.0.1",
		Port:           "0",
		DatabaseType:   config.SQLite,
		SQLitePath:     ":memory:",
		DatabaseName:   "bank_test",
		PoolMode:       config.PoolModePool,
		PoolSize:       10,
		RetryMax:       3,
		RetryDelay:     time.Millisecond,
		RetryBackoff:   config.BackoffConstant,
		SessionSecret:  "test_session_secret_for_testing_only",
		SessionStore:   config.SessionStoreMemory,
		PasswordScheme: config.PasswordPlaintext,
		LogLevel:       "debug",
		Environment:    "test",
	}
}
