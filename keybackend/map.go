// Package keybackend holds the credentials allowed to use the admin API.
package keybackend

import (
	"crypto/subtle"
	"fmt"
)

// MapSecretStore keeps access key to secret key pairs in memory.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a store over the given access key to secret key mapping.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	return &MapSecretStore{keys: keys}
}

// Lookup retrieves the secret key for the given access key.
func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("lookup %q: %w", accessKey, ErrKeyNotFound)
	}
	return secretKey, nil
}

// Verify checks secretKey against the stored secret in constant time.
func (s *MapSecretStore) Verify(accessKey, secretKey string) error {
	want, err := s.Lookup(accessKey)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(secretKey)) != 1 {
		return fmt.Errorf("verify %q: %w", accessKey, ErrSecretMismatch)
	}
	return nil
}

// Len reports how many credentials the store holds.
func (s *MapSecretStore) Len() int {
	return len(s.keys)
}
