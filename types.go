package wally

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Comment is one entry on the wall.
type Comment struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Text      string    `json:"comment" yaml:"comment"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type ListQuery struct {
	Limit  int
	Cursor string
}

type ListResult struct {
	Items      []Comment `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// Tables holds configurable table names for comment storage.
// For MongoDB the comments name is used as the collection name.
type Tables struct {
	Comments string `mapstructure:"comments"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Comments == "" {
		return errors.New("validate tables: comments table name cannot be empty")
	}

	if !IsValidTableName(t.Comments) {
		return fmt.Errorf("validate tables: invalid comments table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Comments)
	}

	return nil
}
