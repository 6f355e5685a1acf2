package vault

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("whaaat la policia noooo")

func newLocked(t *testing.T, pin PIN) *Locked {
	v, err := New(testSecret)
	require.NoError(t, err)
	return v.Bind(pin)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(nil)
	require.Equal(t, ErrEmptySecret, err)
	_, err = New([]byte{})
	require.Equal(t, ErrEmptySecret, err)
}

func TestNewCopiesSecret(t *testing.T) {
	secret := []byte("abc")
	v, err := New(secret)
	require.NoError(t, err)
	secret[0] = 'x'
	unlocked, _ := v.Bind(PIN{1, 1}).Unlock(PIN{1, 1})
	require.Equal(t, []byte("abc"), unlocked.ReadSecret())
}

func TestBind(t *testing.T) {
	v, err := New(testSecret)
	require.NoError(t, err)
	require.Equal(t, PhaseUnbound, v.Phase())
	locked := v.Bind(PIN{2, 3})
	require.True(t, locked.Valid())
	require.Equal(t, PhaseLocked, locked.Phase())
	require.Equal(t, uint32(0), locked.FailedAttempts())
	require.Equal(t, PIN{2, 3}, locked.s.pin)
	require.Empty(t, locked.s.secret)
	require.False(t, v.Valid())
}

func TestUnlockMatch(t *testing.T) {
	locked := newLocked(t, PIN{2, 3})
	_, locked = locked.Unlock(PIN{3, 2})
	unlocked, stillLocked := locked.Unlock(PIN{2, 3})
	require.Nil(t, stillLocked)
	require.NotNil(t, unlocked)
	require.Equal(t, PhaseUnlocked, unlocked.Phase())
	require.Equal(t, testSecret, unlocked.ReadSecret())
	require.Equal(t, uint32(1), unlocked.FailedAttempts())
	require.Equal(t, PIN{2, 3}, unlocked.s.pin)
	require.False(t, locked.Valid())
}

func TestUnlockMismatch(t *testing.T) {
	locked := newLocked(t, PIN{1, 1})
	unlocked, next := locked.Unlock(PIN{0, 0})
	require.Nil(t, unlocked)
	require.NotNil(t, next)
	require.Equal(t, uint32(1), next.FailedAttempts())
	require.Equal(t, PIN{1, 1}, next.s.pin)
	require.Empty(t, next.s.secret)
	require.False(t, locked.Valid())
	require.True(t, next.Valid())
}

// The attempt counter is never consulted: there is no lockout threshold
// and any number of wrong guesses still leaves the vault unlockable.
func TestLockedHasNoAttemptLimit(t *testing.T) {
	locked := newLocked(t, PIN{4, 4})
	const attempts = 10000
	for n := 0; n < attempts; n++ {
		var unlocked *Unlocked
		unlocked, locked = locked.Unlock(PIN{byte(n%4) + 1, byte(n%3) + 1})
		require.Nil(t, unlocked)
		require.Equal(t, uint32(n+1), locked.FailedAttempts())
		require.Empty(t, locked.s.secret)
	}
	unlocked, _ := locked.Unlock(PIN{4, 4})
	require.NotNil(t, unlocked)
	require.Equal(t, uint32(attempts), unlocked.FailedAttempts())
}

func TestStaleHandles(t *testing.T) {
	v, err := New(testSecret)
	require.NoError(t, err)
	locked := v.Bind(PIN{1, 2})
	require.PanicsWithValue(t, ErrStaleHandle, func() { v.Bind(PIN{1, 2}) })

	_, next := locked.Unlock(PIN{2, 1})
	require.PanicsWithValue(t, ErrStaleHandle, func() { locked.Unlock(PIN{1, 2}) })
	require.PanicsWithValue(t, ErrStaleHandle, func() { locked.FailedAttempts() })

	unlocked, _ := next.Unlock(PIN{1, 2})
	require.PanicsWithValue(t, ErrStaleHandle, func() { next.Unlock(PIN{1, 2}) })
	require.True(t, unlocked.Valid())
}

func TestReadSecretReturnsCopy(t *testing.T) {
	unlocked, _ := newLocked(t, PIN{3, 3}).Unlock(PIN{3, 3})
	s := unlocked.ReadSecret()
	s[0] = 'X'
	require.Equal(t, testSecret, unlocked.ReadSecret())
}
