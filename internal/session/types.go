// Package session holds per-user conversational state: language and voice
// selection, model tier, the auth gate, and the gallery of prior image
// generations. Sessions are persisted by a Store keyed by user ID.
package session

import "github.com/Veraticus/chibi/internal/llm"

// MaxAuthAttempts is the hard cap on failed password checks. At the cap the
// password is never compared again; only an administrative reset unlocks
// the session.
const MaxAuthAttempts = 15

// Default session values applied by LoadOrCreate.
const (
	DefaultLanguage = "en-US"
	DefaultVoice    = "en-US-JaneNeural"
)

// Generation is one result of an image-generation call. Immutable once
// created; all fields are backend-assigned and opaque to this system.
type Generation struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Hash    string `json:"hash"`
	URI     string `json:"uri"`
}

// Gallery is the append-only sequence of a session's generations.
// Growth is unbounded; nothing is ever evicted.
type Gallery []Generation

// Append adds a generation. Insertion order is significant.
func (g *Gallery) Append(gen Generation) {
	*g = append(*g, gen)
}

// FindByID looks a generation up by its opaque ID, scanning from the most
// recent since follow-up actions overwhelmingly target recent items.
func (g Gallery) FindByID(id string) (Generation, bool) {
	for i := len(g) - 1; i >= 0; i-- {
		if g[i].ID == id {
			return g[i], true
		}
	}
	return Generation{}, false
}

// Last returns the most recently appended generation.
func (g Gallery) Last() (Generation, bool) {
	if len(g) == 0 {
		return Generation{}, false
	}
	return g[len(g)-1], true
}

// AuthState tracks the password gate for one session.
type AuthState struct {
	Authenticated bool `json:"authenticated"`
	Attempts      uint `json:"attempts"`
}

// Session is the full per-user state.
type Session struct {
	Language string    `json:"language"`
	Voice    string    `json:"voice"`
	Model    llm.Model `json:"model"`
	Gallery  Gallery   `json:"gallery"`
	Auth     AuthState `json:"auth"`
}

// AuthLocked reports whether the attempt cap has been reached.
func (s *Session) AuthLocked() bool {
	return s.Auth.Attempts >= MaxAuthAttempts
}

// TryAuth checks a password against the expected one. Once the attempt cap
// is reached the password is rejected without comparison. Attempts only
// grow; they are never reset by a successful check.
func (s *Session) TryAuth(password, expected string) bool {
	if s.AuthLocked() {
		return false
	}
	if password != expected {
		s.Auth.Attempts++
		return false
	}
	s.Auth.Authenticated = true
	return true
}

// ResetAuth clears the attempt counter and authentication flag. This is the
// administrative unlock for sessions that hit the cap.
func (s *Session) ResetAuth() {
	s.Auth = AuthState{}
}
