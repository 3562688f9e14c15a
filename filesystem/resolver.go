// Package filesystem resolves request URIs against a directory tree.
// All access goes through an os.Root, so neither ".." segments nor symlinks
// can reach files outside the serving root; such URIs resolve to a missing
// file.
package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sagarc03/wally"
)

// Options configures a Resolver.
type Options struct {
	// Index lists file names served in place of a directory listing, in
	// order of preference. Empty means directories are always listed.
	Index []string
}

// Resolver maps request URIs to files and directories below a root.
type Resolver struct {
	root    *os.Root
	rootAbs string
	index   []string
}

// NewResolver creates a Resolver serving root. The root stays owned by the
// caller and must outlive the resolver.
func NewResolver(root *os.Root, opts Options) (*Resolver, error) {
	if root == nil {
		return nil, fmt.Errorf("new resolver: %w: root cannot be nil", wally.ErrInvalidInput)
	}

	abs, err := filepath.Abs(root.Name())
	if err != nil {
		return nil, fmt.Errorf("new resolver: %w", err)
	}

	for _, name := range opts.Index {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("new resolver: %w: invalid index name %q", wally.ErrInvalidInput, name)
		}
	}

	return &Resolver{
		root:    root,
		rootAbs: filepath.Clean(abs),
		index:   opts.Index,
	}, nil
}

// Resolve returns the file or directory uri names. Undecodable URIs, paths
// escaping the root and paths that do not exist resolve to a missing file.
func (r *Resolver) Resolve(ctx context.Context, uri string) (wally.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := uri
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	decoded, err := url.PathUnescape(p)
	if err != nil {
		slog.Debug("undecodable uri", "uri", uri, "err", err)
		return r.missing(r.rootAbs), nil
	}

	clean := path.Clean("/" + decoded)
	abs := filepath.Join(r.rootAbs, filepath.FromSlash(clean))
	if !r.contains(abs) {
		return r.missing(abs), nil
	}

	name := rootName(clean)
	info, err := r.root.Stat(name)
	if err != nil {
		// not found, permission denied and symlinks leaving the root alike
		slog.Debug("stat resource", "uri", uri, "err", err)
		return r.missing(abs), nil
	}

	if info.IsDir() {
		if f, ok := r.indexFile(name, abs); ok {
			return f, nil
		}
		return &Directory{resolver: r, name: name, abs: abs}, nil
	}

	return &File{
		resolver: r,
		name:     name,
		abs:      abs,
		exists:   true,
		modTime:  info.ModTime(),
	}, nil
}

func (r *Resolver) indexFile(dir, dirAbs string) (*File, bool) {
	for _, idx := range r.index {
		name := path.Join(dir, idx)
		info, err := r.root.Stat(name)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return &File{
			resolver: r,
			name:     name,
			abs:      filepath.Join(dirAbs, idx),
			exists:   true,
			modTime:  info.ModTime(),
		}, true
	}
	return nil, false
}

func (r *Resolver) missing(abs string) *File {
	return &File{resolver: r, abs: abs}
}

func (r *Resolver) contains(abs string) bool {
	if abs == r.rootAbs {
		return true
	}
	prefix := r.rootAbs
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(abs, prefix)
}

// visiblePath is the path a client sees for abs: "/" for the root and for
// anything outside it, otherwise the part after the root.
func (r *Resolver) visiblePath(abs string) string {
	if !strings.HasPrefix(abs, r.rootAbs) || len(abs) <= len(r.rootAbs) {
		return "/"
	}
	v := filepath.ToSlash(abs[len(r.rootAbs):])
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	return v
}

// rootName turns a cleaned absolute URI path into a name relative to the root.
func rootName(clean string) string {
	name := strings.TrimPrefix(clean, "/")
	if name == "" {
		return "."
	}
	return name
}
