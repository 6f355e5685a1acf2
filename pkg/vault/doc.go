// Package vault implements the PIN-gated secret vault.
//
// The vault moves through three phases and each phase is a distinct type:
//
//	Unbound --Bind--> Locked --Unlock--> Unlocked
//	                    ^   |
//	                    +---+ (wrong guess)
//
// An operation is only reachable through the handle of the phase that allows
// it, and every transition consumes the handle it is called on. A consumed
// handle reports Valid() == false and panics with ErrStaleHandle if used again.
// There is no way back from Unlocked or Locked; a new session starts over
// with a fresh Unbound vault.
package vault
