package wally

import "strconv"

// Version is the protocol version written on every status line.
const Version = "HTTP/1.1"

// StatusCode is a response status the server can produce.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusNotModified         StatusCode = 304
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusPreconditionFailed  StatusCode = 412
	StatusInternalServerError StatusCode = 500
	StatusNotImplemented      StatusCode = 501
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusNotModified:         "Not Modified",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusPreconditionFailed:  "Precondition Failed",
	StatusInternalServerError: "Internal Server Error",
	StatusNotImplemented:      "Not Implemented",
}

// Code returns the numeric status code.
func (s StatusCode) Code() int {
	return int(s)
}

// Reason returns the reason phrase, e.g. "Not Found".
func (s StatusCode) Reason() string {
	return reasonPhrases[s]
}

// String returns code and reason phrase, e.g. "404 Not Found". Error
// responses use it as their body.
func (s StatusCode) String() string {
	return strconv.Itoa(int(s)) + " " + s.Reason()
}
