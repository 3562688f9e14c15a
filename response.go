package wally

import (
	"io"
)

const crlf = "\r\n"

// Response is a complete response ready to be written to a connection.
// Responses are produced by BuildResponse and not modified afterwards.
type Response struct {
	Status StatusCode
	Header *Header
	Body   []byte
}

// StatusLine returns e.g. "HTTP/1.1 200 OK".
func (r *Response) StatusLine() string {
	return Version + " " + r.Status.String()
}

// HeaderLines returns the status line followed by all header lines, without
// line terminators.
func (r *Response) HeaderLines() []string {
	lines := []string{r.StatusLine()}
	if r.Header != nil {
		lines = append(lines, r.Header.Lines()...)
	}
	return lines
}

// WriteTo writes the status line, the header lines and a blank line, each
// terminated by CRLF, followed by the body.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, line := range r.HeaderLines() {
		n, err := io.WriteString(w, line+crlf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err := io.WriteString(w, crlf)
	total += int64(n)
	if err != nil {
		return total, err
	}

	if len(r.Body) > 0 {
		n, err = w.Write(r.Body)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}
