package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/wally"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB is an open SQLite comment store.
type DB struct {
	db     *sql.DB
	tables wally.Tables
}

// Connect opens the SQLite database at dsn. Tables should be validated
// before calling Connect.
func Connect(ctx context.Context, dsn string, tables wally.Tables) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// an in-memory database lives and dies with its connection
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return &DB{db: db, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.db, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the CommentRepo for database operations.
func (d *DB) GetRepo() wally.CommentRepo {
	return &repo{db: d.db, tableName: quoteIdentifier(d.tables.Comments)}
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
