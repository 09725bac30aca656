package db

import (
	"errors"
	"fmt"
	"testing"

	"bank-auth/internal/config"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect_Rebind(t *testing.T) {
	query := `SELECT id FROM users WHERE username = ? AND password = ?`

	assert.Equal(t, query, MySQLDialect.Rebind(query))
	assert.Equal(t, query, SQLiteDialect.Rebind(query))
	assert.Equal(t, `SELECT id FROM users WHERE username = $1 AND password = $2`, PostgresDialect.Rebind(query))
}

func TestDialect_IsUniqueViolation(t *testing.T) {
	mysqlDup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"}
	sqliteDup := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	pgDup := &pgconn.PgError{Code: "23505"}

	assert.True(t, MySQLDialect.IsUniqueViolation(fmt.Errorf("wrapped: %w", mysqlDup)))
	assert.True(t, SQLiteDialect.IsUniqueViolation(sqliteDup))
	assert.True(t, PostgresDialect.IsUniqueViolation(pgDup))

	assert.False(t, MySQLDialect.IsUniqueViolation(&mysql.MySQLError{Number: 1045}))
	assert.False(t, SQLiteDialect.IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.False(t, PostgresDialect.IsUniqueViolation(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, MySQLDialect.IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, PostgresDialect.IsUniqueViolation(nil))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor(config.MySQL)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.DriverName)

	d, err = DialectFor(config.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d.DriverName)

	d, err = DialectFor(config.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.DriverName)
	assert.True(t, d.ReturningID)

	_, err = DialectFor(config.MongoDB)
	assert.Error(t, err)
}
