package wally

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"time"
)

// DefaultWallPath is where the comment wall is served.
const DefaultWallPath = "/Wally"

// wallPageSize is the page size used when collecting every comment.
const wallPageSize = 1000

// Wall is the synthetic page listing all comments followed by a form that
// posts new ones back to the same path.
type Wall struct {
	comments CommentRepo
	path     string
}

// NewWall returns the wall served at path and backed by comments.
func NewWall(comments CommentRepo, path string) *Wall {
	if path == "" {
		path = DefaultWallPath
	}
	return &Wall{comments: comments, path: path}
}

func (w *Wall) Kind() ResourceKind { return KindSynthetic }

// Exists is always true; the page is generated.
func (w *Wall) Exists() bool { return true }

func (w *Wall) ContentType() string { return "text/html" }

func (w *Wall) LastModified() (time.Time, bool) { return time.Time{}, false }

// Data renders the page with every stored comment, oldest first.
func (w *Wall) Data(ctx context.Context) ([]byte, error) {
	var all []Comment
	cursor := ""
	for {
		page, err := w.comments.List(ctx, ListQuery{Limit: wallPageSize, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("render wall: %w", err)
		}
		all = append(all, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return w.render(all), nil
}

func (w *Wall) render(comments []Comment) []byte {
	var b bytes.Buffer
	b.WriteString("<html><head><title>WALLy</title></head><body>")
	for _, c := range comments {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(c.Name))
		b.WriteString(" Wrote: ")
		b.WriteString(html.EscapeString(c.Text))
		b.WriteString("</p>")
	}
	b.WriteString(`<form enctype="multipart/form-data" action="`)
	b.WriteString(html.EscapeString(w.path))
	b.WriteString(`" method="POST">`)
	b.WriteString(`<input name="username" type="text" placeholder="Your Name">`)
	b.WriteString(`<input name="comment" type="text" placeholder="What's on your mind?">`)
	b.WriteString("<button>Submit</button>")
	b.WriteString("</form></body></html>")
	return b.Bytes()
}

// Submission is a comment posted through the wall form.
type Submission struct {
	Name string
	Text string
}

// ParseSubmission extracts the username and comment fields from a
// multipart/form-data or application/x-www-form-urlencoded body. A request
// without Content-Type is read as url-encoded.
func ParseSubmission(req *Request) (Submission, error) {
	ct, _ := req.Header.Value(ContentType)
	if ct == "" {
		ct = "application/x-www-form-urlencoded"
	}

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return Submission{}, fmt.Errorf("parse submission: %w: %w", ErrInvalidInput, err)
	}

	var sub Submission
	switch mediaType {
	case "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return Submission{}, fmt.Errorf("parse submission: %w: missing multipart boundary", ErrInvalidInput)
		}
		form, err := multipart.NewReader(bytes.NewReader(req.Body), boundary).ReadForm(MaxBodyBytes)
		if err != nil {
			return Submission{}, fmt.Errorf("parse submission: %w: %w", ErrInvalidInput, err)
		}
		defer func() { _ = form.RemoveAll() }()
		sub.Name = firstValue(form.Value["username"])
		sub.Text = firstValue(form.Value["comment"])

	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(req.Body))
		if err != nil {
			return Submission{}, fmt.Errorf("parse submission: %w: %w", ErrInvalidInput, err)
		}
		sub.Name = values.Get("username")
		sub.Text = values.Get("comment")

	default:
		return Submission{}, fmt.Errorf("parse submission: %w: unsupported content type %q", ErrInvalidInput, mediaType)
	}

	sub.Name = strings.TrimSpace(sub.Name)
	sub.Text = strings.TrimSpace(sub.Text)
	if err := ValidateComment(sub.Name, sub.Text); err != nil {
		return Submission{}, fmt.Errorf("parse submission: %w", err)
	}
	return sub, nil
}

func firstValue(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

