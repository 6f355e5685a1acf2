package vault

import (
	"crypto/subtle"
	"errors"
)

var (
	// ErrStaleHandle indicates a handle is used after its transition.
	ErrStaleHandle = errors.New("vault handle already consumed")
	// ErrEmptySecret indicates no secret is provisioned.
	ErrEmptySecret = errors.New("provisioned secret is empty")
)

// Phase is the lifecycle stage of a vault.
type Phase int

// Phases
const (
	PhaseUnbound Phase = iota
	PhaseLocked
	PhaseUnlocked
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseUnbound:
		return "unbound"
	case PhaseLocked:
		return "locked"
	case PhaseUnlocked:
		return "unlocked"
	}
	return "unknown"
}

// state is owned by exactly one handle at a time.
type state struct {
	pin            PIN
	failedAttempts uint32
	secret         []byte // only set when unlocked
	provisioned    []byte
}

// Unbound is a vault without a PIN.
type Unbound struct {
	s *state
}

// Locked is a vault with a PIN, the secret is not available.
type Locked struct {
	s *state
}

// Unlocked is a vault opened by the correct PIN.
type Unlocked struct {
	s *state
}

// New creates an Unbound vault which reveals secret once unlocked.
func New(secret []byte) (*Unbound, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Unbound{s: &state{provisioned: append([]byte(nil), secret...)}}, nil
}

func take(s **state) *state {
	if *s == nil {
		panic(ErrStaleHandle)
	}
	owned := *s
	*s = nil
	return owned
}

func peek(s *state) *state {
	if s == nil {
		panic(ErrStaleHandle)
	}
	return s
}

// Valid indicates the handle has not been consumed.
func (v *Unbound) Valid() bool { return v != nil && v.s != nil }

// Phase returns PhaseUnbound.
func (v *Unbound) Phase() Phase { return PhaseUnbound }

// Bind assigns the PIN and locks the vault. It always succeeds.
func (v *Unbound) Bind(pin PIN) *Locked {
	s := take(&v.s)
	return &Locked{s: &state{pin: pin, provisioned: s.provisioned}}
}

// Valid indicates the handle has not been consumed.
func (v *Locked) Valid() bool { return v != nil && v.s != nil }

// Phase returns PhaseLocked.
func (v *Locked) Phase() Phase { return PhaseLocked }

// FailedAttempts returns the number of wrong guesses since Bind.
// It is tracked only, no limit is enforced on further attempts.
func (v *Locked) FailedAttempts() uint32 { return peek(v.s).failedAttempts }

// Unlock compares guess with the PIN. Exactly one of the results is non-nil:
// the Unlocked vault on a match, otherwise a Locked vault with one more
// failed attempt. The receiver is consumed either way.
func (v *Locked) Unlock(guess PIN) (*Unlocked, *Locked) {
	s := take(&v.s)
	if subtle.ConstantTimeCompare(guess[:], s.pin[:]) == 1 {
		s.secret = append([]byte(nil), s.provisioned...)
		return &Unlocked{s: s}, nil
	}
	s.failedAttempts++
	return nil, &Locked{s: s}
}

// Valid indicates the handle has not been consumed.
func (v *Unlocked) Valid() bool { return v != nil && v.s != nil }

// Phase returns PhaseUnlocked.
func (v *Unlocked) Phase() Phase { return PhaseUnlocked }

// FailedAttempts returns the number of wrong guesses before unlocking.
func (v *Unlocked) FailedAttempts() uint32 { return peek(v.s).failedAttempts }

// ReadSecret returns a copy of the secret.
func (v *Unlocked) ReadSecret() []byte {
	return append([]byte(nil), peek(v.s).secret...)
}
