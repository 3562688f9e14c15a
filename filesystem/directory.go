package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"path/filepath"
	"time"

	"github.com/sagarc03/wally"
)

// Directory is a directory below the root, served as an HTML listing.
type Directory struct {
	resolver *Resolver
	name     string
	abs      string
}

func (d *Directory) Kind() wally.ResourceKind { return wally.KindDirectory }

func (d *Directory) Exists() bool { return true }

func (d *Directory) ContentType() string { return "text/html" }

// LastModified is not supported; listings are always sent in full.
func (d *Directory) LastModified() (time.Time, bool) { return time.Time{}, false }

// Path is the path clients see for the directory.
func (d *Directory) Path() string { return d.resolver.visiblePath(d.abs) }

// IsRoot reports whether the directory is the serving root.
func (d *Directory) IsRoot() bool { return d.abs == d.resolver.rootAbs }

// Parent is the path of the enclosing directory.
func (d *Directory) Parent() string { return d.resolver.visiblePath(filepath.Dir(d.abs)) }

// Data renders the listing: the directory path, a link to the parent unless
// this is the root, then one link per entry.
func (d *Directory) Data(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(d.resolver.root.FS(), d.name)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", d.name, err)
	}

	p := d.Path()

	var b bytes.Buffer
	b.WriteString("<html>\n<body>\n")
	b.WriteString("<hr><b> Viewing: " + html.EscapeString(p) + "</b><hr>\n")
	b.WriteString("<ul>\n")

	if !d.IsRoot() {
		writeLink(&b, d.Parent(), "..")
	}

	sep := "/"
	if d.IsRoot() {
		sep = ""
	}
	for _, e := range entries {
		writeLink(&b, p+sep+e.Name(), e.Name())
	}

	b.WriteString("</ul>\n</body>\n</html>\n")
	return b.Bytes(), nil
}

func writeLink(b *bytes.Buffer, target, text string) {
	href := (&url.URL{Path: target}).EscapedPath()
	b.WriteString(`<li> <a href="` + html.EscapeString(href) + `">` + html.EscapeString(text) + "</a></li>\n")
}
