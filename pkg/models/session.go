package models

import (
	"time"

	"github.com/google/uuid"
)

// Session correlates the requests of one visit. The session id is a
// client-generated opaque string, independent of authentication. A session
// may start anonymous and later be linked to an account; once set, the
// account id is only ever overwritten by an explicit link, never cleared.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    string     `json:"session_id"`
	AccountID    *uuid.UUID `json:"account_id,omitempty"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
}
