package wally

import "errors"

var (
	// ErrNotFound is returned when a resource or comment is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrBodyTooLarge is returned when a request announces a body larger than MaxBodyBytes
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrHeaderTooLarge is returned when a request line or its headers exceed MaxLineBytes or MaxHeaderBytes
	ErrHeaderTooLarge = errors.New("request header too large")
)
