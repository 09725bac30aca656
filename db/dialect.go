package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bank-auth/internal/config"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures what differs between the relational backends
type Dialect struct {
	Name       string
	DriverName string
	// Schema is the idempotent statement issued by the bootstrapper
	Schema string
	// ReturningID is set when inserts report the new id through RETURNING instead of LastInsertId
	ReturningID bool
	// NumberedParams is set when placeholders are $1, $2, ... instead of ?
	NumberedParams bool

	isUniqueViolation func(err error) bool
}

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

var (
	MySQLDialect = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		Schema: `CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL
		)`,
		isUniqueViolation: func(err error) bool {
			var me *mysql.MySQLError
			return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
		},
	}

	SQLiteDialect = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite3",
		Schema: `CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL
		)`,
		isUniqueViolation: func(err error) bool {
			var se sqlite3.Error
			return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
		},
	}

	PostgresDialect = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		Schema: `CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL
		)`,
		ReturningID:    true,
		NumberedParams: true,
		isUniqueViolation: func(err error) bool {
			var pe *pgconn.PgError
			return errors.As(err, &pe) && pe.Code == postgresUniqueViolate
		},
	}
)

// DialectFor maps a relational database type to its dialect
func DialectFor(dbType config.DatabaseType) (Dialect, error) {
	switch dbType {
	case config.MySQL:
		return MySQLDialect, nil
	case config.SQLite:
		return SQLiteDialect, nil
	case config.Postgres:
		return PostgresDialect, nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for database type %q", dbType)
	}
}

// Rebind rewrites ? placeholders for dialects with numbered parameters
func (d Dialect) Rebind(query string) string {
	if !d.NumberedParams {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsUniqueViolation reports whether err is the driver's unique-constraint error
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil || d.isUniqueViolation == nil {
		return false
	}
	return d.isUniqueViolation(err)
}
