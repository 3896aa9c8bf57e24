package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record bound to one issued token pair.
// ClosedAt is nil while the session is live.
type Session struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	OpenedAt   time.Time
	ClosedAt   *time.Time
}

// Active reports whether the session has not been superseded.
func (s Session) Active() bool {
	return s.ClosedAt == nil
}
