package session

import (
	"testing"

	"github.com/hupe1980/sessionkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_CreateGetDelete(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Create("s1", 200000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.CurrentGeneration())
	assert.Equal(t, 200000, sess.Usage.TokensBudget)

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Same(t, sess, got, "Get must return the live handle")

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = store.Create("s1", 100)
	assert.ErrorIs(t, err, core.ErrSessionExists)

	require.NoError(t, store.Delete("s1"))
	_, err = store.Get("s1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}
