package wally

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the RFC 1123 layout used for the Date header.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// DefaultServerInfo is sent in the Server header unless configured otherwise.
const DefaultServerInfo = "Wally Simple HTTP Server 0.1"

var dateLayouts = []string{
	TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// ParseHTTPDate parses an RFC 1123 date as sent in If-Modified-Since.
func ParseHTTPDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BuildOptions carries the process-wide values every response needs.
type BuildOptions struct {
	ServerInfo string
	// Now defaults to time.Now.
	Now func() time.Time
}

// exchange is the state threaded through the decision steps of one request.
type exchange struct {
	ctx context.Context
	req *Request
	res Resource
	now time.Time

	data    []byte
	loaded  bool
	loadErr error

	// set once If-Match has been evaluated; the other preconditions are skipped
	preconditionsDone bool
	// set by a non-matching If-None-Match
	skipModifiedSince bool
}

func (x *exchange) load() ([]byte, error) {
	if !x.loaded {
		x.data, x.loadErr = x.res.Data(x.ctx)
		x.loaded = true
	}
	return x.data, x.loadErr
}

type outcome struct {
	status   StatusCode
	terminal bool
}

func proceed() outcome {
	return outcome{status: StatusOK}
}

func terminal(status StatusCode) outcome {
	return outcome{status: status, terminal: true}
}

type decisionStep func(x *exchange) outcome

// decisionSteps run in order; the first terminal outcome decides the status.
var decisionSteps = []decisionStep{
	checkMethod,
	checkExists,
	checkIfMatch,
	checkIfNoneMatch,
	checkIfModifiedSince,
}

func decide(x *exchange) StatusCode {
	for _, step := range decisionSteps {
		if o := step(x); o.terminal {
			return o.status
		}
	}
	return StatusOK
}

func checkMethod(x *exchange) outcome {
	if x.req.Method == MethodUnsupported {
		return terminal(StatusNotImplemented)
	}
	return proceed()
}

func checkExists(x *exchange) outcome {
	if x.res.Exists() {
		return proceed()
	}
	// no entity tag can match an entity that does not exist
	if x.req.Header.Has(IfMatch) {
		return terminal(StatusPreconditionFailed)
	}
	return terminal(StatusNotFound)
}

func checkIfMatch(x *exchange) outcome {
	tags := x.req.Header.Values(IfMatch)
	if tags == nil {
		return proceed()
	}
	x.preconditionsDone = true

	data, err := x.load()
	if err != nil {
		return terminal(StatusInternalServerError)
	}

	matched, star := matchTags(tags, EntityTag(data))
	if !matched || (star && !x.res.Exists()) {
		return terminal(StatusPreconditionFailed)
	}
	return proceed()
}

func checkIfNoneMatch(x *exchange) outcome {
	if x.preconditionsDone {
		return proceed()
	}
	tags := x.req.Header.Values(IfNoneMatch)
	if tags == nil {
		return proceed()
	}

	data, err := x.load()
	if err != nil {
		return terminal(StatusInternalServerError)
	}

	if matched, _ := matchTags(tags, EntityTag(data)); matched {
		return terminal(StatusNotModified)
	}
	x.skipModifiedSince = true
	return proceed()
}

func checkIfModifiedSince(x *exchange) outcome {
	if x.preconditionsDone || x.skipModifiedSince {
		return proceed()
	}
	v, ok := x.req.Header.Value(IfModifiedSince)
	if !ok {
		return proceed()
	}

	// unparsable and future dates are treated as if the header was absent
	since, ok := ParseHTTPDate(v)
	if !ok || since.After(x.now) {
		return proceed()
	}

	modified, ok := x.res.LastModified()
	if !ok {
		return proceed()
	}
	if !modified.Truncate(time.Second).After(since) {
		return terminal(StatusNotModified)
	}
	return proceed()
}

// matchTags reports whether any of tags equals current or is "*".
func matchTags(tags []string, current string) (matched, star bool) {
	want := opaqueTag(current)
	for _, t := range tags {
		if t == "*" {
			star = true
			matched = true
			continue
		}
		if o := opaqueTag(t); o != "" && o == want {
			matched = true
		}
	}
	return matched, star
}

func opaqueTag(t string) string {
	t = strings.TrimPrefix(strings.TrimSpace(t), "W/")
	return strings.Trim(t, `"`)
}

// BuildResponse decides the status for req against res and assembles the
// response. The first terminal decision wins: 501 for unsupported methods,
// 404 for missing resources, then If-Match, If-None-Match and
// If-Modified-Since in that order. Failing to read the resource data yields
// 500.
func BuildResponse(ctx context.Context, req *Request, res Resource, opts BuildOptions) *Response {
	req = withHeader(req)

	x := &exchange{ctx: ctx, req: req, res: res, now: opts.now()}
	status := decide(x)

	contentType := ""
	var body []byte

	if status == StatusOK {
		data, err := x.load()
		if err != nil {
			status = StatusInternalServerError
		} else {
			body = data
			contentType = res.ContentType()
		}
	}

	if x.loadErr != nil {
		slog.Error("read resource data", "uri", req.URI, "kind", res.Kind(), "err", x.loadErr)
	}

	etag := ""
	if res.Exists() {
		if data, err := x.load(); err == nil {
			etag = EntityTag(data)
		}
	}

	return assemble(req, status, contentType, body, etag, x.now, opts)
}

// NewStatusResponse returns a plain-text response carrying only the status
// text, with the headers every response has.
func NewStatusResponse(req *Request, status StatusCode, opts BuildOptions) *Response {
	req = withHeader(req)
	return assemble(req, status, "", nil, "", opts.now(), opts)
}

func (o BuildOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o BuildOptions) serverInfo() string {
	if o.ServerInfo != "" {
		return o.ServerInfo
	}
	return DefaultServerInfo
}

func assemble(req *Request, status StatusCode, contentType string, body []byte, etag string, now time.Time, opts BuildOptions) *Response {
	if status != StatusOK {
		body = []byte(status.String())
		contentType = ""
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	if req.Method == MethodHead {
		body = nil
	}

	h := NewHeader()
	for _, v := range req.Header.Values(Connection) {
		h.AddEntry(Connection, v)
	}
	h.AddEntry(ContentType, contentType+"; charset=utf-8")
	if etag != "" {
		h.AddEntry(ETag, etag)
	}
	h.AddEntry(ContentLength, strconv.Itoa(len(body)))
	h.AddEntry(Server, opts.serverInfo())
	h.AddEntry(Date, now.UTC().Format(TimeFormat))

	return &Response{Status: status, Header: h, Body: body}
}
