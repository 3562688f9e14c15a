package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
)

var commentsColumns = map[string]internal.Column{
	"id":         {Type: "uuid"},
	"name":       {Type: "text"},
	"comment":    {Type: "text"},
	"created_at": {Type: "timestamp with time zone"},
}

// ValidateSchema checks that the comments table exists in the current
// schema with the expected columns and its list index.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables wally.Tables) error {
	table := tables.Comments
	if !wally.IsValidTableName(table) {
		return fmt.Errorf("validate schema: invalid table name: %s", table)
	}

	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table).Scan(&exists)
	if err != nil {
		return fmt.Errorf("validate schema %s: check table exists: %w", table, err)
	}
	if !exists {
		return fmt.Errorf("validate schema %s: table does not exist", table)
	}

	columns, err := tableColumns(ctx, pool, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}

	schemaErr := internal.CompareColumns(table, commentsColumns, columns)

	indexName := internal.ListIndexName(table)
	var hasIndex bool
	err = pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = current_schema() AND tablename = $1 AND indexname = $2
		)`, table, indexName).Scan(&hasIndex)
	if err != nil {
		return fmt.Errorf("validate schema %s: check index exists: %w", table, err)
	}
	if !hasIndex {
		if schemaErr == nil {
			schemaErr = &internal.SchemaError{Table: table}
		}
		schemaErr.MissingIndex = indexName
	}

	if schemaErr != nil {
		return fmt.Errorf("validate schema %s: %w", table, schemaErr)
	}
	return nil
}

type columnRow struct {
	Name     string
	DataType string
	Nullable string
}

func tableColumns(ctx context.Context, pool *pgxpool.Pool, table string) (map[string]internal.Column, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByPos[columnRow])
	if err != nil {
		return nil, fmt.Errorf("collect columns: %w", err)
	}

	columns := make(map[string]internal.Column, len(found))
	for _, c := range found {
		columns[c.Name] = internal.Column{Type: c.DataType, Nullable: c.Nullable == "YES"}
	}
	return columns, nil
}
