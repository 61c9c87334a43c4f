package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/chibi/internal/llm"
)

func TestMemoryStoreLoadOrCreateDefaults(t *testing.T) {
	store, err := NewStore(StoreTypeMemory, WithDefaultModel(llm.ModelGPT4))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sess, err := store.LoadOrCreate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, sess.Language)
	assert.Equal(t, DefaultVoice, sess.Voice)
	assert.Equal(t, llm.ModelGPT4, sess.Model)
	assert.False(t, sess.Auth.Authenticated)
	assert.Empty(t, sess.Gallery)
}

func TestMemoryStoreSaveAndReload(t *testing.T) {
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	sess, err := store.LoadOrCreate(ctx, "user-1")
	require.NoError(t, err)

	sess.Language = "de"
	sess.Auth.Authenticated = true
	sess.Gallery.Append(Generation{ID: "g1"})
	require.NoError(t, store.Save(ctx, "user-1", sess))

	reloaded, err := store.LoadOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "de", reloaded.Language)
	assert.True(t, reloaded.Auth.Authenticated)
	require.Len(t, reloaded.Gallery, 1)

	// Mutating the reloaded copy must not leak into the store.
	reloaded.Gallery.Append(Generation{ID: "g2"})
	again, err := store.LoadOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, again.Gallery, 1)
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	sess, err := store.LoadOrCreate(ctx, "user-1")
	require.NoError(t, err)
	sess.Auth.Authenticated = true
	require.NoError(t, store.Save(ctx, "user-1", sess))

	other, err := store.LoadOrCreate(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, other.Auth.Authenticated)
}

func TestMemoryStoreDelete(t *testing.T) {
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	sess, err := store.LoadOrCreate(ctx, "user-1")
	require.NoError(t, err)
	sess.Language = "fr"
	require.NoError(t, store.Save(ctx, "user-1", sess))
	require.NoError(t, store.Delete(ctx, "user-1"))

	fresh, err := store.LoadOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, fresh.Language)
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore(StoreType("bogus"))
	assert.ErrorIs(t, err, ErrInvalidStoreType)

	_, err = NewStore(StoreTypeRedis)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadOrCreateRequiresUserID(t *testing.T) {
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.LoadOrCreate(context.Background(), "")
	require.Error(t, err)
}
