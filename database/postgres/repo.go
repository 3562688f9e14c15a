// Package postgres implements the comment repository on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
)

type repo struct {
	pool      *pgxpool.Pool
	tableName string // sanitized
}

// NewRepo returns a CommentRepo over an already migrated database.
func NewRepo(pool *pgxpool.Pool, tables wally.Tables) (wally.CommentRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &repo{pool: pool, tableName: pgx.Identifier{tables.Comments}.Sanitize()}, nil
}

func (r *repo) Put(ctx context.Context, name, text string) (wally.Comment, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, comment)
		VALUES ($1, $2)
		RETURNING id, name, comment, created_at
	`, r.tableName)

	var c wally.Comment
	err := r.pool.QueryRow(ctx, query, name, text).Scan(&c.ID, &c.Name, &c.Text, &c.CreatedAt)
	if err != nil {
		return wally.Comment{}, fmt.Errorf("put: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
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
			LIMIT $1
		`, r.tableName)
		args = []any{limit + 1}
	} else {
		cursorID, parseErr := uuid.Parse(cursor.ID)
		if parseErr != nil {
			return wally.ListResult{}, fmt.Errorf("list: %w: cursor id: %w", wally.ErrInvalidInput, parseErr)
		}
		query = fmt.Sprintf(`
			SELECT id, name, comment, created_at
			FROM %s
			WHERE (created_at, id) > ($1, $2)
			ORDER BY created_at, id
			LIMIT $3
		`, r.tableName)
		args = []any{cursor.CreatedAt, cursorID, limit + 1}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return wally.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]wally.Comment, 0, limit)
	for rows.Next() {
		var c wally.Comment
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.Name, &c.Text, &createdAt); err != nil {
			return wally.ListResult{}, fmt.Errorf("list: scan: %w", err)
		}
		c.CreatedAt = createdAt.UTC()
		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		return wally.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.CreatedAt, last.ID.String())
		items = items[:limit]
	}

	return wally.ListResult{Items: items, NextCursor: nextCursor}, nil
}
