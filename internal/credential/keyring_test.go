package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_SetGetDelete(t *testing.T) {
	v := New(keyring.NewArrayKeyring(nil))

	_, err := v.Get(KeyBackendToken)
	assert.ErrorIs(t, err, ErrNotFound)

	val, err := v.Lookup(KeyBackendToken)
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, v.Set(KeyBackendToken, "tok-1"))
	val, err = v.Get(KeyBackendToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", val)

	require.NoError(t, v.Delete(KeyBackendToken))
	require.NoError(t, v.Delete(KeyBackendToken))
	_, err = v.Get(KeyBackendToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVault_EnvironmentOverrides(t *testing.T) {
	v := New(keyring.NewArrayKeyring([]keyring.Item{{Key: KeyTelegramToken, Data: []byte("from-ring")}}))

	t.Setenv(EnvName(KeyTelegramToken), "from-env")
	assert.Equal(t, "CRONOGRAMA_TELEGRAM_TOKEN", EnvName(KeyTelegramToken))

	val, err := v.Get(KeyTelegramToken)
	require.NoError(t, err)
	assert.Equal(t, "from-env", val)
}
