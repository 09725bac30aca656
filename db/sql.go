package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"bank-auth/internal/config"
	"bank-auth/internal/util"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// SQLHandle is a lazily connected relational database handle
type SQLHandle struct {
	DB      *sql.DB
	Dialect Dialect
}

// OpenSQL opens the handle without touching the network; the first Ping connects.
// maxOpenConns of 1 gives the single-connection mode.
func OpenSQL(dialect Dialect, dsn string, maxOpenConns int) (*SQLHandle, error) {
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	return &SQLHandle{DB: db, Dialect: dialect}, nil
}

// Ping checks that a connection can be acquired
func (h *SQLHandle) Ping(ctx context.Context) error {
	if err := h.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", h.Dialect.Name, err)
	}
	return nil
}

// EnsureSchema creates the users table if it doesn't exist
func (h *SQLHandle) EnsureSchema(ctx context.Context) error {
	err := util.RetryOnLock(func() error {
		_, err := h.DB.ExecContext(ctx, h.Dialect.Schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (h *SQLHandle) Close() error {
	return h.DB.Close()
}

// DSN builds the driver connection string for a relational database type
func DSN(cfg *config.Config) (string, error) {
	addr := net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))

	switch cfg.DatabaseType {
	case config.MySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.DatabaseName
		return mc.FormatDSN(), nil
	case config.Postgres:
		u := &url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
			Host:     addr,
			Path:     "/" + cfg.DatabaseName,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	case config.SQLite:
		// Ensure the directory exists
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory for SQLite: %w", err)
		}
		return cfg.SQLitePath + "?_journal_mode=WAL&_timeout=10000", nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_TYPE: %s", cfg.DatabaseType)
	}
}
