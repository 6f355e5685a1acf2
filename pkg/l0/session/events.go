package session

import (
	"github.com/robotalks/pinvault/pkg/vault"
)

// EventKind classifies session events.
type EventKind string

// Event kinds
const (
	EventBound         EventKind = "bound"
	EventPINRevealed   EventKind = "pin-revealed"
	EventGuessRejected EventKind = "guess-rejected"
	EventUnlocked      EventKind = "unlocked"
	EventSecretQueried EventKind = "secret-queried"
	EventEnded         EventKind = "session-ended"
)

// Event reports progress of a session. It never carries the PIN or the secret.
type Event struct {
	Session        uint64
	Kind           EventKind
	Phase          vault.Phase
	FailedAttempts uint32
}

// Observer receives events synchronously from the session loop.
type Observer interface {
	SessionEvent(Event)
}

// ObserverFunc is the func form of Observer.
type ObserverFunc func(Event)

// SessionEvent implements Observer.
func (f ObserverFunc) SessionEvent(e Event) {
	f(e)
}

// Observers fans out events.
type Observers []Observer

// SessionEvent implements Observer.
func (o Observers) SessionEvent(e Event) {
	for _, obs := range o {
		obs.SessionEvent(e)
	}
}
