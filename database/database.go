package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/mongo"
	"github.com/sagarc03/wally/database/postgres"
	"github.com/sagarc03/wally/database/sqlite"
)

// Config holds the configuration for connecting to a comment store.
type Config struct {
	// Type specifies the database type: "sqlite", "postgres" or "mongo"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres mongo"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables names the tables (collections for mongo) holding the data
	Tables wally.Tables `mapstructure:"tables"`
	// AutoMigrate runs migrations when the server starts
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Database is an open comment store.
type Database interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// Migrate creates missing tables and indexes. Safe to run repeatedly.
	Migrate(ctx context.Context) error
	// Validate checks the schema matches what the repository expects.
	Validate(ctx context.Context) error
	// GetRepo returns the repository over the configured tables.
	GetRepo() wally.CommentRepo
	// Close releases the connection.
	Close() error
}

var (
	_ Database = (*sqlite.DB)(nil)
	_ Database = (*postgres.DB)(nil)
	_ Database = (*mongo.DB)(nil)
)

// Connect validates the table names and opens the configured backend.
// Migrations are not run; call Migrate or Validate as needed.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	case "mongo":
		return mongo.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects and prepares the store for serving: with autoMigrate the
// schema is created first, then it is validated either way.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
		}
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	return db, nil
}
