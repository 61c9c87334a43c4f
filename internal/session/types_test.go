package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryLast(t *testing.T) {
	var gallery Gallery

	_, ok := gallery.Last()
	assert.False(t, ok)

	g1 := Generation{ID: "g1"}
	g2 := Generation{ID: "g2"}
	g3 := Generation{ID: "g3"}
	gallery.Append(g1)
	gallery.Append(g2)
	gallery.Append(g3)

	last, ok := gallery.Last()
	require.True(t, ok)
	assert.Equal(t, g3, last)

	// Lookups must not disturb what Last returns.
	_, _ = gallery.FindByID("g1")
	last, ok = gallery.Last()
	require.True(t, ok)
	assert.Equal(t, g3, last)
}

func TestGalleryFindByID(t *testing.T) {
	gallery := Gallery{
		{ID: "g1", URI: "u1"},
		{ID: "g2", URI: "u2"},
		{ID: "g3", URI: "u3"},
	}

	found, ok := gallery.FindByID("g2")
	require.True(t, ok)
	assert.Equal(t, "u2", found.URI)

	_, ok = gallery.FindByID("missing")
	assert.False(t, ok)
}

func TestTryAuth(t *testing.T) {
	sess := &Session{}

	ok := sess.TryAuth("wrong", "secret")
	assert.False(t, ok)
	assert.False(t, sess.Auth.Authenticated)
	assert.Equal(t, uint(1), sess.Auth.Attempts)

	ok = sess.TryAuth("secret", "secret")
	assert.True(t, ok)
	assert.True(t, sess.Auth.Authenticated)
	// A successful check never resets the counter.
	assert.Equal(t, uint(1), sess.Auth.Attempts)
}

func TestTryAuthLockout(t *testing.T) {
	sess := &Session{}

	for i := 0; i < MaxAuthAttempts; i++ {
		assert.False(t, sess.TryAuth("wrong", "secret"))
	}
	assert.Equal(t, uint(MaxAuthAttempts), sess.Auth.Attempts)
	assert.True(t, sess.AuthLocked())

	// At the cap even the correct password is rejected, and the counter
	// stops growing.
	assert.False(t, sess.TryAuth("secret", "secret"))
	assert.False(t, sess.Auth.Authenticated)
	assert.Equal(t, uint(MaxAuthAttempts), sess.Auth.Attempts)
}

func TestResetAuthUnlocks(t *testing.T) {
	sess := &Session{Auth: AuthState{Attempts: MaxAuthAttempts}}
	require.True(t, sess.AuthLocked())

	sess.ResetAuth()
	assert.False(t, sess.AuthLocked())
	assert.True(t, sess.TryAuth("secret", "secret"))
}
