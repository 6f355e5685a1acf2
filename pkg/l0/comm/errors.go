package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrLineTooLong indicates a reply line exceeds MaxReplyLen.
	ErrLineTooLong = errors.New("reply line too long")
)

// UnexpectedReplyError indicates the device replied something the
// client doesn't understand.
type UnexpectedReplyError struct {
	Reply string
}

// Error implements error.
func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("unexpected reply %q", e.Reply)
}
