package admin

import "errors"

// ErrUnauthorized is returned when admin credentials are missing or wrong.
var ErrUnauthorized = errors.New("unauthorized")
