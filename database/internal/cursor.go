// Package internal holds helpers shared by the comment repositories.
package internal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Cursor marks the last comment of a page. The next page starts strictly
// after (CreatedAt, ID).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor returns an opaque, URL-safe cursor.
func EncodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty string
// yields the zero Cursor.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}

	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return Cursor{}, errors.New("decode cursor: invalid format")
	}
	if id == "" {
		return Cursor{}, errors.New("decode cursor: empty id")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", err)
	}

	return Cursor{CreatedAt: createdAt, ID: id}, nil
}

// PageSize clamps a requested limit to [1, MaxPageSize], defaulting to
// DefaultPageSize.
func PageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
