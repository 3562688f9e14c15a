package wally

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// MaxBodyBytes bounds the body a request may announce via Content-Length.
	MaxBodyBytes = 1 << 20
	// MaxLineBytes bounds a single request or header line.
	MaxLineBytes = 8 << 10
	// MaxHeaderBytes bounds the request line and header lines together.
	MaxHeaderBytes = 64 << 10
)

// Method is the request method as far as the server cares about it.
type Method int

const (
	MethodUnsupported Method = iota
	MethodGet
	MethodHead
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodHead:
		return "HEAD"
	default:
		return "UNSUPPORTED"
	}
}

// ParseMethod matches token case-insensitively against GET and HEAD.
// Anything else, POST and PUT included, is MethodUnsupported.
func ParseMethod(token string) Method {
	switch strings.ToUpper(token) {
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	default:
		return MethodUnsupported
	}
}

// Request is a parsed request. It is not modified after parsing.
type Request struct {
	Method  Method
	Token   string // method token as sent, e.g. "POST"
	URI     string
	Version string
	Header  *Header
	Body    []byte
}

func degradedRequest() *Request {
	return &Request{Method: MethodUnsupported, Header: NewHeader()}
}

// withHeader returns req, or a copy of it with an empty header table when
// req has none. req itself is never modified.
func withHeader(req *Request) *Request {
	if req.Header != nil {
		return req
	}
	cp := *req
	cp.Header = NewHeader()
	return &cp
}

// Path returns the URI without query string or fragment.
func (r *Request) Path() string {
	p := r.URI
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p
}

// WantsClose reports whether the client asked to close the connection.
func (r *Request) WantsClose() bool {
	return r.Header != nil && r.Header.HasToken(Connection, "close")
}

// ParseRequest reads one request from r. It never fails: a nil reader, an
// empty stream, an empty first line or a malformed request line all yield a
// request with MethodUnsupported and empty URI and version.
func ParseRequest(r io.Reader) *Request {
	if r == nil {
		return degradedRequest()
	}

	req, err := ReadRequest(bufio.NewReader(r))
	if err != nil && req == nil {
		return degradedRequest()
	}
	return req
}

// ReadRequest reads the next request from br. It returns io.EOF when the
// stream ends before any byte of a new request. Degraded input is reported
// through the returned request, not as an error.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	if br == nil {
		return degradedRequest(), nil
	}

	budget := MaxHeaderBytes

	line, err := readLine(br, &budget)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read request line: %w", err)
	}

	if line == "" {
		return degradedRequest(), nil
	}

	req := degradedRequest()

	// a malformed request line only degrades method, URI and version;
	// headers and body framing still apply
	if tokens := strings.Fields(line); len(tokens) == 3 {
		req.Token = tokens[0]
		req.Method = ParseMethod(tokens[0])
		req.URI = tokens[1]
		req.Version = tokens[2]
	}

	for {
		line, err = readLine(br, &budget)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return req, nil
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		if line == "" {
			break
		}
		req.Header.AddEntryWhenSupported(line)
	}

	n := contentLength(req.Header)
	if n == 0 {
		return req, nil
	}
	if n > MaxBodyBytes {
		return req, fmt.Errorf("read body: %d bytes: %w", n, ErrBodyTooLarge)
	}

	req.Body = make([]byte, n)
	if _, err := io.ReadFull(br, req.Body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return req, nil
}

func contentLength(h *Header) int64 {
	v, ok := h.Value(ContentLength)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// similar to readLineSlice() in net/textproto/reader.go, with limits.
// budget is shared by every line of one request and is decremented by the
// length of each line read.
func readLine(br *bufio.Reader, budget *int) (string, error) {
	var line []byte
	for {
		l, more, err := br.ReadLine()
		if err != nil {
			return "", err
		}
		if len(line)+len(l) > MaxLineBytes {
			return "", fmt.Errorf("line exceeds %d bytes: %w", MaxLineBytes, ErrHeaderTooLarge)
		}
		*budget -= len(l)
		if *budget < 0 {
			return "", fmt.Errorf("headers exceed %d bytes: %w", MaxHeaderBytes, ErrHeaderTooLarge)
		}
		if line == nil && !more {
			return string(l), nil
		}
		line = append(line, l...)
		if !more {
			break
		}
	}
	return string(line), nil
}
