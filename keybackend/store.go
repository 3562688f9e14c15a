package keybackend

import "fmt"

// KeysConfig lists the admin credentials: pairs given inline in the config
// and an optional JSON or YAML file with more of them.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"`
	File   string    `mapstructure:"file"`
}

// Credentials returns the usable pairs, inline pairs first and file pairs
// after them. Pairs missing either key are skipped.
func (c KeysConfig) Credentials() ([]KeyPair, error) {
	pairs := usable(c.Inline)
	if c.File == "" {
		return pairs, nil
	}

	filePairs, err := readKeyPairs(c.File)
	if err != nil {
		return nil, fmt.Errorf("admin keys: %w", err)
	}
	return append(pairs, usable(filePairs)...), nil
}

// NewSecretStore builds the admin credential store for cfg. When an access
// key appears more than once the last pair wins, so the file overrides
// inline config.
func NewSecretStore(cfg KeysConfig) (*MapSecretStore, error) {
	pairs, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}

	keys := make(map[string]string, len(pairs))
	for _, p := range pairs {
		keys[p.AccessKey] = p.SecretKey
	}
	return NewMapSecretStore(keys), nil
}

func usable(pairs []KeyPair) []KeyPair {
	out := make([]KeyPair, 0, len(pairs))
	for _, p := range pairs {
		if p.AccessKey != "" && p.SecretKey != "" {
			out = append(out, p)
		}
	}
	return out
}
