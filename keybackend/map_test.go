package keybackend_test

import (
	"testing"

	"github.com/sagarc03/wally/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminStore() *keybackend.MapSecretStore {
	return keybackend.NewMapSecretStore(map[string]string{
		"moderator": "hunter22",
		"ops":       "pager-duty",
	})
}

func TestMapSecretStore_Lookup(t *testing.T) {
	t.Run("known moderator", func(t *testing.T) {
		secret, err := adminStore().Lookup("moderator")
		require.NoError(t, err)
		assert.Equal(t, "hunter22", secret)
	})

	// every store shape answers an unknown access key the same way
	stores := map[string]*keybackend.MapSecretStore{
		"populated": adminStore(),
		"empty":     keybackend.NewMapSecretStore(map[string]string{}),
		"nil map":   keybackend.NewMapSecretStore(nil),
	}
	for name, store := range stores {
		t.Run("unknown key in "+name+" store", func(t *testing.T) {
			secret, err := store.Lookup("intruder")
			require.ErrorIs(t, err, keybackend.ErrKeyNotFound)
			assert.Contains(t, err.Error(), `"intruder"`)
			assert.Empty(t, secret)
		})
	}
}

func TestMapSecretStore_Verify(t *testing.T) {
	store := adminStore()

	tests := []struct {
		name      string
		accessKey string
		secretKey string
		wantErr   error
	}{
		{name: "moderator", accessKey: "moderator", secretKey: "hunter22"},
		{name: "ops", accessKey: "ops", secretKey: "pager-duty"},
		{name: "swapped secrets", accessKey: "moderator", secretKey: "pager-duty", wantErr: keybackend.ErrSecretMismatch},
		{name: "secret prefix", accessKey: "moderator", secretKey: "hunter2", wantErr: keybackend.ErrSecretMismatch},
		{name: "empty secret", accessKey: "moderator", secretKey: "", wantErr: keybackend.ErrSecretMismatch},
		{name: "access key case matters", accessKey: "Moderator", secretKey: "hunter22", wantErr: keybackend.ErrKeyNotFound},
		{name: "unknown user", accessKey: "intruder", secretKey: "hunter22", wantErr: keybackend.ErrKeyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Verify(tt.accessKey, tt.secretKey)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 2, store.Len())
}
