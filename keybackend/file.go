package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyPair is one admin credential.
type KeyPair struct {
	AccessKey string `json:"access_key" yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" mapstructure:"secret_key"`
}

// LoadKeysFromFile loads admin credentials from a JSON or YAML file, chosen
// by extension (.yaml / .yml, anything else is JSON). The file holds a list
// of key pairs:
//
//	[
//	  {"access_key": "moderator", "secret_key": "s3cret"}
//	]
//
// Pairs with an empty access or secret key are skipped. Later duplicates win.
func LoadKeysFromFile(path string) (map[string]string, error) {
	pairs, err := readKeyPairs(path)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]string, len(pairs))
	for _, p := range usable(pairs) {
		keys[p.AccessKey] = p.SecretKey
	}
	return keys, nil
}

func readKeyPairs(path string) ([]KeyPair, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pairs)
	default:
		err = json.Unmarshal(data, &pairs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse keys file %s: %w", filepath.Base(path), err)
	}
	return pairs, nil
}
