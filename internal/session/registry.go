package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultLanguage = "javascript"

var (
	// ErrInvalidArgument indicates a malformed request: an empty session ID
	// or a payload field with the wrong shape.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSessionNotFound indicates the targeted session ID is not in the registry.
	ErrSessionNotFound = errors.New("session not found")
)

// A collaborative editing session: one shared buffer plus a language tag
type Session struct {
	SessionID string    `json:"sessionId"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registry holds the authoritative state for every live session, keyed by
// session ID. It is pure data: no network awareness, no persistence.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create allocates a fresh session. Empty initialLanguage falls back to
// DefaultLanguage; empty initialCode is a valid empty buffer.
func (r *Registry) Create(initialCode, initialLanguage string) *Session {
	if initialLanguage == "" {
		initialLanguage = DefaultLanguage
	}

	sess := &Session{
		SessionID: uuid.NewString(),
		Code:      initialCode,
		Language:  initialLanguage,
		UpdatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.sessions[sess.SessionID] = sess
	r.mu.Unlock()

	out := *sess
	return &out
}

// Get returns a copy of the stored session, or (nil, nil) if the ID was never
// created. A merely-missing ID is not an error; an empty ID is.
func (r *Registry) Get(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId must be a non-empty string", ErrInvalidArgument)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	out := *sess
	return &out, nil
}

// UpdateCode replaces the session's buffer and refreshes UpdatedAt. Writing
// the identical code is still accepted and still bumps the timestamp.
func (r *Registry) UpdateCode(sessionID, code string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionId must be a non-empty string", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sess.Code = code
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateLanguage replaces the session's language tag. The tag is free-form
// but must be non-empty.
func (r *Registry) UpdateLanguage(sessionID, language string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionId must be a non-empty string", ErrInvalidArgument)
	}
	if language == "" {
		return fmt.Errorf("%w: language must be a non-empty string", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sess.Language = language
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Clear drops all sessions. Used to reset state between independent test
// runs, never during normal request handling.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*Session)
}
