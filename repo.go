package wally

import (
	"context"

	"github.com/google/uuid"
)

// CommentRepo persists wall comments. Implementations must be safe for
// concurrent use; every connection goroutine may call them.
type CommentRepo interface {
	// Put appends a comment and returns it with ID and creation time set.
	Put(ctx context.Context, name, text string) (Comment, error)

	// List returns comments oldest first, paginated by an opaque cursor.
	// NextCursor is empty on the last page.
	List(ctx context.Context, q ListQuery) (ListResult, error)

	// Delete removes a comment. Returns ErrNotFound if id does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Resolver maps a request URI to a resource.
//
// Implementations must never return a resource located outside their
// serving root; such URIs resolve to a resource whose Exists is false.
// The returned error is reserved for failures of the resolver itself.
type Resolver interface {
	Resolve(ctx context.Context, uri string) (Resource, error)
}
