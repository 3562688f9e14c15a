package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sagarc03/wally"
)

const fallbackContentType = "text/plain"

// File is a regular file below the root, or a path that resolved to nothing.
type File struct {
	resolver *Resolver
	name     string // relative to the root, empty when missing
	abs      string
	exists   bool
	modTime  time.Time
}

func (f *File) Kind() wally.ResourceKind { return wally.KindFile }

func (f *File) Exists() bool { return f.exists }

// Path is the path clients see for the file.
func (f *File) Path() string { return f.resolver.visiblePath(f.abs) }

// IsRoot reports whether the file is the serving root itself.
func (f *File) IsRoot() bool { return f.exists && f.abs == f.resolver.rootAbs }

// Data reads the whole file. A missing file yields empty data.
func (f *File) Data(ctx context.Context) ([]byte, error) {
	if !f.exists {
		return []byte{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := f.resolver.root.ReadFile(f.name)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", f.name, err)
	}
	return data, nil
}

// LastModified returns the modification time of an existing file.
func (f *File) LastModified() (time.Time, bool) {
	if !f.exists {
		return time.Time{}, false
	}
	return f.modTime, true
}

// ContentType guesses the media type from the extension, then from the
// content. Parameters are dropped.
func (f *File) ContentType() string {
	if ct := mediaType(mime.TypeByExtension(filepath.Ext(f.abs))); ct != "" {
		return ct
	}
	if !f.exists {
		return fallbackContentType
	}

	file, err := f.resolver.root.Open(f.name)
	if err != nil {
		return fallbackContentType
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", f.name, "err", closeErr)
		}
	}()

	m, err := mimetype.DetectReader(file)
	if err != nil {
		return fallbackContentType
	}
	if ct := mediaType(m.String()); ct != "" {
		return ct
	}
	return fallbackContentType
}

func mediaType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}
