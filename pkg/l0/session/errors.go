package session

import (
	"errors"

	"github.com/robotalks/pinvault/pkg/vault"
)

// IndicatorError indicates the PIN couldn't be revealed on the indicator.
type IndicatorError struct {
	Err error
}

// Error implements error.
func (e *IndicatorError) Error() string {
	return "show pin: " + e.Err.Error()
}

// Unwrap returns the error from the indicator.
func (e *IndicatorError) Unwrap() error {
	return e.Err
}

// IsDeviceFault tells if a session error comes from the device itself,
// the random source or the indicator, rather than the connection.
// A device fault must halt the device.
func IsDeviceFault(err error) bool {
	var rngErr *vault.RandomSourceError
	var ledErr *IndicatorError
	return errors.As(err, &rngErr) || errors.As(err, &ledErr)
}
