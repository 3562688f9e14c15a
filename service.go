package wally

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service turns parsed requests into responses. It is safe for concurrent
// use; the only shared state is its immutable configuration, the resolver
// and the comment repository.
type Service struct {
	resolver Resolver
	comments CommentRepo
	wall     *Wall
	opts     BuildOptions
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	ServerInfo string
	// WallEnabled serves the comment wall at WallPath (default /Wally).
	WallEnabled bool
	WallPath    string
	// Now overrides the clock used for Date and If-Modified-Since.
	Now func() time.Time
}

func NewService(resolver Resolver, comments CommentRepo, cfg ServiceConfig) (*Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("new service: %w: resolver cannot be nil", ErrInvalidInput)
	}

	s := &Service{
		resolver: resolver,
		comments: comments,
		opts:     BuildOptions{ServerInfo: cfg.ServerInfo, Now: cfg.Now},
	}

	if cfg.WallEnabled {
		if comments == nil {
			return nil, fmt.Errorf("new service: %w: wall requires a comment repository", ErrInvalidInput)
		}
		if cfg.WallPath != "" && !strings.HasPrefix(cfg.WallPath, "/") {
			return nil, fmt.Errorf("new service: %w: wall path %q must start with /", ErrInvalidInput, cfg.WallPath)
		}
		s.wall = NewWall(comments, cfg.WallPath)
	}

	return s, nil
}

// Respond produces the response for req. It never fails: resolver and
// storage failures are logged and answered with 500.
func (s *Service) Respond(ctx context.Context, req *Request) *Response {
	if req == nil {
		req = degradedRequest()
	}
	req = withHeader(req)

	if s.isWall(req) {
		if strings.EqualFold(req.Token, "POST") {
			return s.submit(ctx, req)
		}
		return BuildResponse(ctx, req, s.wall, s.opts)
	}

	// a degraded request has no URI to resolve; it only needs its 501
	if req.URI == "" {
		return BuildResponse(ctx, req, absent{}, s.opts)
	}

	res, err := s.resolver.Resolve(ctx, req.URI)
	if err != nil {
		slog.Error("resolve resource", "uri", req.URI, "err", err)
		return NewStatusResponse(req, StatusInternalServerError, s.opts)
	}

	return BuildResponse(ctx, req, res, s.opts)
}

func (s *Service) isWall(req *Request) bool {
	return s.wall != nil && req.Path() == s.wall.path
}

// submit stores a comment posted to the wall and answers with the updated
// page.
func (s *Service) submit(ctx context.Context, req *Request) *Response {
	sub, err := ParseSubmission(req)
	if err != nil {
		slog.Debug("reject wall submission", "err", err)
		return NewStatusResponse(req, StatusBadRequest, s.opts)
	}

	c, err := s.comments.Put(ctx, sub.Name, sub.Text)
	if err != nil {
		slog.Error("store comment", "err", err)
		return NewStatusResponse(req, StatusInternalServerError, s.opts)
	}
	slog.Info("comment added", "id", c.ID, "name", c.Name)

	return BuildResponse(ctx, wallView(req), s.wall, s.opts)
}

// AddComment validates and stores a comment outside of a wall submission.
func (s *Service) AddComment(ctx context.Context, name, text string) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, fmt.Errorf("add comment: %w", err)
	}
	if s.comments == nil {
		return Comment{}, fmt.Errorf("add comment: %w: no comment repository", ErrInternal)
	}

	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if err := ValidateComment(name, text); err != nil {
		return Comment{}, fmt.Errorf("add comment: %w", err)
	}

	c, err := s.comments.Put(ctx, name, text)
	if err != nil {
		return Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// ListComments returns one page of comments, oldest first.
func (s *Service) ListComments(ctx context.Context, q ListQuery) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list comments: %w", err)
	}
	if s.comments == nil {
		return ListResult{}, fmt.Errorf("list comments: %w: no comment repository", ErrInternal)
	}

	result, err := s.comments.List(ctx, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("list comments: %w", err)
	}
	return result, nil
}

// DeleteComment removes a comment. Returns ErrNotFound if it does not exist.
func (s *Service) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if s.comments == nil {
		return fmt.Errorf("delete comment: %w: no comment repository", ErrInternal)
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// wallView is the GET the page is rendered for after a submission. Only the
// Connection header carries over; preconditions do not apply to a POST.
func wallView(req *Request) *Request {
	h := NewHeader()
	for _, v := range req.Header.Values(Connection) {
		h.AddEntry(Connection, v)
	}
	return &Request{
		Method:  MethodGet,
		Token:   req.Token,
		URI:     req.URI,
		Version: req.Version,
		Header:  h,
	}
}

// absent is the resource of a request that named none.
type absent struct{}

func (absent) Kind() ResourceKind                   { return KindFile }
func (absent) Exists() bool                         { return false }
func (absent) Data(context.Context) ([]byte, error) { return []byte{}, nil }
func (absent) ContentType() string                  { return "text/plain" }
func (absent) LastModified() (time.Time, bool)      { return time.Time{}, false }

