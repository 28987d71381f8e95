package auth

import (
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// sessionIDKey is the session value key holding the visitor session id.
const sessionIDKey = "session_id"

// SessionStore issues and reads the visitor session cookie. The cookie
// carries only an opaque session id; all record data stays server-side,
// keyed by that id.
type SessionStore struct {
	store      *sessions.CookieStore
	cookieName string
}

// NewSessionStore creates a cookie-backed session store.
//
// The secret signs session cookies. It can be any passphrase; it is SHA-256
// hashed to derive a 32-byte key. The secret must be consistent across server
// restarts and multiple servers in a load-balanced deployment.
func NewSessionStore(secret, cookieName string, maxAgeHours int) *SessionStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeHours * 3600,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionStore{store: store, cookieName: cookieName}
}

// SessionID returns the visitor session id from the request cookie, minting
// and persisting a new one when the cookie is absent or invalid. The bool
// reports whether the id was newly minted.
func (s *SessionStore) SessionID(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	// Get never fails fatally for cookie stores; a bad cookie yields a
	// fresh session.
	session, _ := s.store.Get(r, s.cookieName)

	if id, ok := session.Values[sessionIDKey].(string); ok && id != "" {
		return id, false, nil
	}

	id := "sess_" + uuid.NewString()
	session.Values[sessionIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", false, fmt.Errorf("failed to save session cookie: %w", err)
	}

	return id, true, nil
}

// Clear expires the session cookie.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, s.cookieName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session cookie: %w", err)
	}
	return nil
}
