package wally_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/sagarc03/wally"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResource struct {
	kind     wally.ResourceKind
	exists   bool
	data     []byte
	err      error
	ctype    string
	modified time.Time
	reads    int
}

func (r *stubResource) Kind() wally.ResourceKind { return r.kind }
func (r *stubResource) Exists() bool             { return r.exists }
func (r *stubResource) ContentType() string      { return r.ctype }

func (r *stubResource) Data(context.Context) ([]byte, error) {
	r.reads++
	return r.data, r.err
}

func (r *stubResource) LastModified() (time.Time, bool) {
	if r.modified.IsZero() {
		return time.Time{}, false
	}
	return r.modified, true
}

var (
	fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	modTime  = time.Date(2024, 5, 1, 10, 30, 15, 500_000_000, time.UTC)
)

func buildOptions() wally.BuildOptions {
	return wally.BuildOptions{
		ServerInfo: "test-server",
		Now:        func() time.Time { return fixedNow },
	}
}

func newFile(data string) *stubResource {
	return &stubResource{kind: wally.KindFile, exists: true, data: []byte(data), ctype: "text/html", modified: modTime}
}

func request(method wally.Method, headers ...string) *wally.Request {
	req := &wally.Request{Method: method, Token: method.String(), URI: "/x", Version: "HTTP/1.1", Header: wally.NewHeader()}
	for _, h := range headers {
		req.Header.AddEntryWhenSupported(h)
	}
	return req
}

func header(t *testing.T, resp *wally.Response, f wally.HeaderField) string {
	t.Helper()
	v, _ := resp.Header.Value(f)
	return v
}

func TestBuildResponse_Status(t *testing.T) {
	res := newFile("hello")
	tag := wally.EntityTag([]byte("hello"))
	bare := tag[1 : len(tag)-1]

	tests := []struct {
		name    string
		method  wally.Method
		headers []string
		res     *stubResource
		want    wally.StatusCode
	}{
		{name: "plain get", method: wally.MethodGet, want: wally.StatusOK},
		{name: "plain head", method: wally.MethodHead, want: wally.StatusOK},
		{name: "unsupported method", method: wally.MethodUnsupported, want: wally.StatusNotImplemented},
		{name: "unsupported method on missing resource", method: wally.MethodUnsupported, res: &stubResource{}, want: wally.StatusNotImplemented},
		{name: "missing resource", method: wally.MethodGet, res: &stubResource{}, want: wally.StatusNotFound},
		{name: "if-match star on missing resource", method: wally.MethodGet, headers: []string{"If-Match: *"}, res: &stubResource{}, want: wally.StatusPreconditionFailed},
		{name: "if-match tag on missing resource", method: wally.MethodGet, headers: []string{"If-Match: " + tag}, res: &stubResource{}, want: wally.StatusPreconditionFailed},

		{name: "if-match quoted tag", method: wally.MethodGet, headers: []string{"If-Match: " + tag}, want: wally.StatusOK},
		{name: "if-match bare tag", method: wally.MethodGet, headers: []string{"If-Match: " + bare}, want: wally.StatusOK},
		{name: "if-match in list", method: wally.MethodGet, headers: []string{`If-Match: "nope", ` + tag}, want: wally.StatusOK},
		{name: "if-match star", method: wally.MethodGet, headers: []string{"If-Match: *"}, want: wally.StatusOK},
		{name: "if-match mismatch", method: wally.MethodGet, headers: []string{`If-Match: "nope"`}, want: wally.StatusPreconditionFailed},

		{name: "if-none-match hit", method: wally.MethodGet, headers: []string{"If-None-Match: " + tag}, want: wally.StatusNotModified},
		{name: "if-none-match hit on head", method: wally.MethodHead, headers: []string{"If-None-Match: " + tag}, want: wally.StatusNotModified},
		{name: "if-none-match star", method: wally.MethodGet, headers: []string{"If-None-Match: *"}, want: wally.StatusNotModified},
		{name: "if-none-match miss", method: wally.MethodGet, headers: []string{`If-None-Match: "nope"`}, want: wally.StatusOK},
		{
			name:    "if-none-match miss suppresses if-modified-since",
			method:  wally.MethodGet,
			headers: []string{`If-None-Match: "nope"`, "If-Modified-Since: Sat, 01 Jun 2024 00:00:00 GMT"},
			want:    wally.StatusOK,
		},
		{
			name:    "if-match pass skips if-none-match",
			method:  wally.MethodGet,
			headers: []string{"If-Match: " + tag, "If-None-Match: " + tag},
			want:    wally.StatusOK,
		},
		{
			name:    "if-match pass skips if-modified-since",
			method:  wally.MethodGet,
			headers: []string{"If-Match: *", "If-Modified-Since: Sat, 01 Jun 2024 00:00:00 GMT"},
			want:    wally.StatusOK,
		},
		{
			name:    "if-match fail wins over if-none-match",
			method:  wally.MethodGet,
			headers: []string{`If-Match: "nope"`, "If-None-Match: " + tag},
			want:    wally.StatusPreconditionFailed,
		},

		{name: "not modified since later date", method: wally.MethodGet, headers: []string{"If-Modified-Since: Sat, 01 Jun 2024 00:00:00 GMT"}, want: wally.StatusNotModified},
		{name: "not modified since same second", method: wally.MethodGet, headers: []string{"If-Modified-Since: Wed, 01 May 2024 10:30:15 GMT"}, want: wally.StatusNotModified},
		{name: "modified after date", method: wally.MethodGet, headers: []string{"If-Modified-Since: Wed, 01 May 2024 10:30:14 GMT"}, want: wally.StatusOK},
		{name: "single digit day", method: wally.MethodGet, headers: []string{"If-Modified-Since: Sat, 1 Jun 2024 00:00:00 GMT"}, want: wally.StatusNotModified},
		{name: "numeric zone", method: wally.MethodGet, headers: []string{"If-Modified-Since: Sat, 01 Jun 2024 02:00:00 +0200"}, want: wally.StatusNotModified},
		{name: "unparsable date ignored", method: wally.MethodGet, headers: []string{"If-Modified-Since: yesterday"}, want: wally.StatusOK},
		{name: "future date ignored", method: wally.MethodGet, headers: []string{"If-Modified-Since: Fri, 01 Jan 2100 00:00:00 GMT"}, want: wally.StatusOK},
		{
			name:    "directory ignores if-modified-since",
			method:  wally.MethodGet,
			headers: []string{"If-Modified-Since: Sat, 01 Jun 2024 00:00:00 GMT"},
			res:     &stubResource{kind: wally.KindDirectory, exists: true, data: []byte("<ul></ul>"), ctype: "text/html"},
			want:    wally.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := res
			if tt.res != nil {
				r = tt.res
			}
			resp := wally.BuildResponse(context.Background(), request(tt.method, tt.headers...), r, buildOptions())
			assert.Equal(t, tt.want, resp.Status)
		})
	}
}

func TestBuildResponse_Headers(t *testing.T) {
	t.Run("ok response", func(t *testing.T) {
		res := newFile("<p>hi</p>")
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet), res, buildOptions())

		require.Equal(t, wally.StatusOK, resp.Status)
		assert.Equal(t, []byte("<p>hi</p>"), resp.Body)
		assert.Equal(t, "text/html; charset=utf-8", header(t, resp, wally.ContentType))
		assert.Equal(t, "9", header(t, resp, wally.ContentLength))
		assert.Equal(t, wally.EntityTag([]byte("<p>hi</p>")), header(t, resp, wally.ETag))
		assert.Equal(t, "test-server", header(t, resp, wally.Server))
		assert.Equal(t, "Sat, 01 Jun 2024 12:00:00 GMT", header(t, resp, wally.Date))
		assert.False(t, resp.Header.Has(wally.Connection))
		assert.Equal(t, 1, res.reads, "data is loaded once")
	})

	t.Run("head has headers but no body", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodHead), newFile("hello"), buildOptions())

		assert.Equal(t, wally.StatusOK, resp.Status)
		assert.Empty(t, resp.Body)
		assert.Equal(t, "0", header(t, resp, wally.ContentLength))
		assert.Equal(t, wally.EntityTag([]byte("hello")), header(t, resp, wally.ETag))
	})

	t.Run("not found carries status text and no etag", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet), &stubResource{}, buildOptions())

		assert.Equal(t, "404 Not Found", string(resp.Body))
		assert.Equal(t, "text/plain; charset=utf-8", header(t, resp, wally.ContentType))
		assert.Equal(t, strconv.Itoa(len("404 Not Found")), header(t, resp, wally.ContentLength))
		assert.False(t, resp.Header.Has(wally.ETag))
	})

	t.Run("not found head has empty body", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodHead), &stubResource{}, buildOptions())

		assert.Equal(t, wally.StatusNotFound, resp.Status)
		assert.Empty(t, resp.Body)
		assert.Equal(t, "0", header(t, resp, wally.ContentLength))
	})

	t.Run("not modified carries etag and status text", func(t *testing.T) {
		tag := wally.EntityTag([]byte("hello"))
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet, "If-None-Match: "+tag), newFile("hello"), buildOptions())

		assert.Equal(t, wally.StatusNotModified, resp.Status)
		assert.Equal(t, tag, header(t, resp, wally.ETag))
		assert.Equal(t, "304 Not Modified", string(resp.Body))
	})

	t.Run("not implemented on existing resource still has etag", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodUnsupported), newFile("hello"), buildOptions())

		assert.Equal(t, wally.StatusNotImplemented, resp.Status)
		assert.Equal(t, "501 Not Implemented", string(resp.Body))
		assert.Equal(t, wally.EntityTag([]byte("hello")), header(t, resp, wally.ETag))
	})

	t.Run("connection values are copied", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet, "Connection: keep-alive, Upgrade"), newFile("x"), buildOptions())

		assert.Equal(t, []string{"keep-alive", "Upgrade"}, resp.Header.Values(wally.Connection))
	})

	t.Run("default server info", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet), newFile("x"), wally.BuildOptions{})

		assert.Equal(t, wally.DefaultServerInfo, header(t, resp, wally.Server))
	})

	t.Run("empty content type falls back to text/plain", func(t *testing.T) {
		res := newFile("x")
		res.ctype = ""
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet), res, buildOptions())

		assert.Equal(t, "text/plain; charset=utf-8", header(t, resp, wally.ContentType))
	})
}

func TestBuildResponse_DataError(t *testing.T) {
	res := &stubResource{kind: wally.KindFile, exists: true, err: errors.New("disk on fire"), ctype: "text/html"}

	t.Run("plain get", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet), res, buildOptions())

		assert.Equal(t, wally.StatusInternalServerError, resp.Status)
		assert.Equal(t, "500 Internal Server Error", string(resp.Body))
		assert.Equal(t, "text/plain; charset=utf-8", header(t, resp, wally.ContentType))
		assert.False(t, resp.Header.Has(wally.ETag))
	})

	t.Run("during if-none-match", func(t *testing.T) {
		resp := wally.BuildResponse(context.Background(), request(wally.MethodGet, `If-None-Match: "x"`), res, buildOptions())

		assert.Equal(t, wally.StatusInternalServerError, resp.Status)
	})
}

func TestNewStatusResponse(t *testing.T) {
	resp := wally.NewStatusResponse(request(wally.MethodUnsupported, "Connection: close"), wally.StatusBadRequest, buildOptions())

	assert.Equal(t, wally.StatusBadRequest, resp.Status)
	assert.Equal(t, "400 Bad Request", string(resp.Body))
	assert.Equal(t, "15", header(t, resp, wally.ContentLength))
	assert.Equal(t, []string{"close"}, resp.Header.Values(wally.Connection))
	assert.False(t, resp.Header.Has(wally.ETag))
}

func TestParseHTTPDate(t *testing.T) {
	want := time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC)

	for _, s := range []string{
		"Sun, 06 Nov 1994 08:49:37 GMT",
		"Sun, 6 Nov 1994 08:49:37 GMT",
		"Sun, 06 Nov 1994 08:49:37 +0000",
		" Sun, 06 Nov 1994 08:49:37 GMT ",
	} {
		got, ok := wally.ParseHTTPDate(s)
		require.True(t, ok, s)
		assert.True(t, want.Equal(got), s)
	}

	for _, s := range []string{"", "Sunday, 06-Nov-94 08:49:37 GMT", "1994-11-06T08:49:37Z"} {
		_, ok := wally.ParseHTTPDate(s)
		assert.False(t, ok, s)
	}
}

func TestBuildResponse_NilHeaderLeavesRequestUntouched(t *testing.T) {
	req := &wally.Request{Method: wally.MethodGet, Token: "GET", URI: "/x", Version: "HTTP/1.1"}

	resp := wally.BuildResponse(context.Background(), req, newFile("hello"), buildOptions())
	assert.Equal(t, wally.StatusOK, resp.Status)
	assert.Nil(t, req.Header)

	resp = wally.NewStatusResponse(req, wally.StatusBadRequest, buildOptions())
	assert.Equal(t, wally.StatusBadRequest, resp.Status)
	assert.Nil(t, req.Header)
}
