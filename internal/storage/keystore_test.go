package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyStore_InMemory(t *testing.T) {
	ks, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer ks.Close()

	_, err = ks.Get("session/email")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, ks.Set("session/email", "ada@x.com"))
	got, err := ks.Get("session/email")
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", got)

	require.NoError(t, ks.Set("session/email", "bob@x.com"))
	got, err = ks.Get("session/email")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", got)

	require.NoError(t, ks.Delete("session/email"))
	_, err = ks.Get("session/email")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, ks.Delete("never-set"))
}

func TestKeyStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	ks, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, ks.Set("session/email", "ada@x.com"))
	require.NoError(t, ks.Close())

	ks, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer ks.Close()

	got, err := ks.Get("session/email")
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", got)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
