// Package sqlite implements the comment repository using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
)

// timeLayout is fixed width so that text ordering equals time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type repo struct {
	db        *sql.DB
	tableName string // quoted
}

// NewRepo returns a CommentRepo over an already migrated database.
func NewRepo(db *sql.DB, tables wally.Tables) (wally.CommentRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &repo{db: db, tableName: quoteIdentifier(tables.Comments)}, nil
}

func (r *repo) Put(ctx context.Context, name, text string) (wally.Comment, error) {
	c := wally.Comment{
		ID:   uuid.New(),
		Name: name,
		Text: text,
	}
	createdAt := time.Now().UTC().Format(timeLayout)

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, comment, created_at) VALUES (?, ?, ?, ?)`, r.tableName)

	if _, err := r.db.ExecContext(ctx, query, c.ID.String(), c.Name, c.Text, createdAt); err != nil {
		return wally.Comment{}, fmt.Errorf("put: %w", err)
	}

	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete: %w", wally.ErrNotFound)
	}

	return nil
}

func (r *repo) List(ctx context.Context, q wally.ListQuery) (wally.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return wally.ListResult{}, fmt.Errorf("list: %w: %w", wally.ErrInvalidInput, err)
	}
	limit := internal.PageSize(q.Limit)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT id, name, comment, created_at
			FROM %s
			ORDER BY created_at, id
			LIMIT ?
		`, r.tableName)
		args = []any{limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT id, name, comment, created_at
			FROM %s
			WHERE (created_at, id) > (?, ?)
			ORDER BY created_at, id
			LIMIT ?
		`, r.tableName)
		args = []any{cursor.CreatedAt.UTC().Format(timeLayout), cursor.ID, limit + 1}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return wally.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]wally.Comment, 0, limit)
	for rows.Next() {
		var c wally.Comment
		var idStr, createdAt string

		if scanErr := rows.Scan(&idStr, &c.Name, &c.Text, &createdAt); scanErr != nil {
			return wally.ListResult{}, fmt.Errorf("list: scan: %w", scanErr)
		}

		var parseErr error
		c.ID, parseErr = uuid.Parse(idStr)
		if parseErr != nil {
			return wally.ListResult{}, fmt.Errorf("list: parse uuid: %w", parseErr)
		}

		c.CreatedAt, parseErr = time.Parse(timeLayout, createdAt)
		if parseErr != nil {
			return wally.ListResult{}, fmt.Errorf("list: parse created_at: %w", parseErr)
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		return wally.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		// Cursor points to the last item of the current page
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.CreatedAt, last.ID.String())
		items = items[:limit]
	}

	return wally.ListResult{Items: items, NextCursor: nextCursor}, nil
}
