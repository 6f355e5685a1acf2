package vault

import (
	"fmt"
	"io"
)

const (
	// PINLength is the number of digits in a PIN.
	PINLength = 2
	// MaxDigit is the largest digit value, digits are in [1, MaxDigit].
	MaxDigit = 4
)

// PIN is the secret a vault is bound to.
type PIN [PINLength]byte

// RandomSourceError indicates the random source failed to provide bytes.
type RandomSourceError struct {
	Err error
}

// Error implements error.
func (e *RandomSourceError) Error() string {
	return fmt.Sprintf("random source failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RandomSourceError) Unwrap() error {
	return e.Err
}

// GeneratePIN draws PINLength bytes from rng and maps each of them
// into [1, MaxDigit]. As 256 is a multiple of MaxDigit, digits are
// uniformly distributed. rng must be cryptographically secure.
func GeneratePIN(rng io.Reader) (PIN, error) {
	var pin PIN
	if _, err := io.ReadFull(rng, pin[:]); err != nil {
		return PIN{}, &RandomSourceError{Err: err}
	}
	for n, b := range pin {
		pin[n] = b%MaxDigit + 1
	}
	return pin, nil
}

// IsValid indicates all digits are in range.
func (p PIN) IsValid() bool {
	for _, d := range p {
		if d < 1 || d > MaxDigit {
			return false
		}
	}
	return true
}

// String renders the digits, out-of-range values are printed as '?'.
func (p PIN) String() string {
	s := make([]byte, len(p))
	for n, d := range p {
		if d > 9 {
			s[n] = '?'
		} else {
			s[n] = '0' + d
		}
	}
	return string(s)
}
