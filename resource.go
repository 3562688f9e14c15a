package wally

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResourceKind tells the resource variants apart.
type ResourceKind int

const (
	KindFile ResourceKind = iota
	KindDirectory
	KindSynthetic
)

func (k ResourceKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSynthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// Resource is what a request URI resolves to. Resources are created per
// request and never shared between requests.
type Resource interface {
	Kind() ResourceKind

	// Exists reports whether the resource can be served at all.
	Exists() bool

	// Data returns the full payload. A missing file yields empty data.
	Data(ctx context.Context) ([]byte, error)

	// ContentType returns the media type without parameters.
	ContentType() string

	// LastModified returns the modification time. Directories and synthetic
	// resources return false and take no part in If-Modified-Since.
	LastModified() (time.Time, bool)
}

// EntityTag returns the quoted entity tag for data. Equal data always yields
// equal tags.
func EntityTag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
