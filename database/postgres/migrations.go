package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
)

func createCommentsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexList := pgx.Identifier{internal.ListIndexName(tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			comment TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at, id);
	`,
		quotedTable,
		indexList, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

// Migrate creates every table in tables that does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables wally.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createCommentsTable(ctx, pool, tables.Comments); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DropTables removes every table in tables along with its indexes.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables wally.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{tables.Comments}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
