package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
)

// commentsColumns is the layout created by createCommentsTable. Timestamps
// are fixed-width UTC text so they sort lexically.
var commentsColumns = map[string]internal.Column{
	"id":         {Type: "text"},
	"name":       {Type: "text"},
	"comment":    {Type: "text"},
	"created_at": {Type: "text"},
}

// ValidateSchema checks that the comments table exists with the expected
// columns and its list index.
func ValidateSchema(ctx context.Context, db *sql.DB, tables wally.Tables) error {
	table := tables.Comments
	if !wally.IsValidTableName(table) {
		return fmt.Errorf("validate schema: invalid table name: %s", table)
	}

	exists, err := schemaObjectExists(ctx, db, "table", table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}
	if !exists {
		return fmt.Errorf("validate schema %s: table does not exist", table)
	}

	columns, err := tableColumns(ctx, db, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}

	schemaErr := internal.CompareColumns(table, commentsColumns, columns)

	indexName := internal.ListIndexName(table)
	hasIndex, err := schemaObjectExists(ctx, db, "index", indexName)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
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

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]internal.Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := make(map[string]internal.Column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		// PRIMARY KEY on a non-integer column does not imply NOT NULL in sqlite
		columns[name] = internal.Column{Type: colType, Nullable: notNull == 0 && pk == 0}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return columns, nil
}

func schemaObjectExists(ctx context.Context, db *sql.DB, kind, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, kind, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check %s exists: %w", kind, err)
	}
	return n > 0, nil
}
