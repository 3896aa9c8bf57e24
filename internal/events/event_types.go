package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityRegistered EventType = "identity_registered"
	EventSessionOpened      EventType = "session_opened"
	EventSessionRefreshed   EventType = "session_refreshed"
)

// Event is emitted after a session flow succeeds.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	IdentityID uuid.UUID `json:"identity_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// SessionRefreshedPayload links a refreshed session to the one it replaced.
type SessionRefreshedPayload struct {
	PreviousSessionID uuid.UUID `json:"previous_session_id"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(t EventType, identityID, sessionID uuid.UUID, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		IdentityID: identityID,
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}
