package clientstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv interface {
	Get(string) ([]byte, error)
	Put(string, []byte) error
	Delete(string) error
}

func exercise(t *testing.T, s kv) {
	t.Helper()
	_, err := s.Get("cart")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put("cart", []byte(`[1]`)))
	v, err := s.Get("cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), v)

	require.NoError(t, s.Delete("cart"))
	_, err = s.Get("cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	b, err := OpenBolt(path)
	require.NoError(t, err)
	exercise(t, b)

	require.NoError(t, b.Put("session", []byte("tok")))
	require.NoError(t, b.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := reopened.Get("session")
	require.NoError(t, err)
	assert.Equal(t, "tok", string(v))
}
