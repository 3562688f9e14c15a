package keybackend

import "errors"

var (
	// ErrKeyNotFound is returned when the access key does not exist in the store.
	ErrKeyNotFound = errors.New("access key not found")
	// ErrSecretMismatch is returned when the secret does not match the access key.
	ErrSecretMismatch = errors.New("secret key mismatch")
)
