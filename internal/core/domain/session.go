package domain

import (
	"encoding/json"
	"time"
)

// Session is the server-held replacement for the browser's userToken/user
// storage keys. Token is opaque; User is whatever the backend last returned.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"userToken"`
	User      json.RawMessage `json:"user,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
