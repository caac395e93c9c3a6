// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionIdleExpiry bounds how long an untouched ephemeral session survives.
const SessionIdleExpiry = 24 * time.Hour

// Session is the server-held ephemeral state for one login lifetime.
// It is created at request start, threaded through the request, and
// destroyed on logout. It is independent of any remember token.
type Session struct {
	ID         string
	UserID     int64 // 0 while unauthenticated
	LoginTime  time.Time
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Authenticated returns true if the session references an identity.
func (s *Session) Authenticated() bool {
	return s.UserID != 0
}

// copySession returns a defensive copy to prevent external modification
// of manager-held state.
func copySession(s *Session) *Session {
	c := *s
	return &c
}

// SessionManager holds ephemeral sessions in process memory, keyed by
// session ID. Shared relational state lives in the store; sessions are
// request/process-local, so a mutex-guarded map is all that is needed.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Create starts a new unauthenticated session.
func (sm *SessionManager) Create(ipAddress, userAgent string) *Session {
	now := time.Now()
	session := &Session{
		ID:         ulid.Make().String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	return copySession(session)
}

// Get returns a copy of the session with the given ID, or nil if it does
// not exist or has idled out. Touches LastSeenAt on hit.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[id]
	if !ok {
		return nil
	}
	if time.Since(session.LastSeenAt) > SessionIdleExpiry {
		delete(sm.sessions, id)
		return nil
	}
	session.LastSeenAt = time.Now()
	return copySession(session)
}

// Update replaces the stored state for the session's ID.
// Returns an error if the session no longer exists.
func (sm *SessionManager) Update(session *Session) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.sessions[session.ID]; !ok {
		return oops.Code("SESSION_NOT_FOUND").
			With("session_id", session.ID).
			Wrap(ErrNotFound)
	}
	stored := copySession(session)
	stored.LastSeenAt = time.Now()
	sm.sessions[session.ID] = stored
	return nil
}

// Regenerate assigns the session a fresh identifier, keeping its state and
// discarding the old ID. Called on login to prevent session fixation.
// Returns a copy carrying the new ID.
func (sm *SessionManager) Regenerate(id string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[id]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("session_id", id).
			Wrap(ErrNotFound)
	}
	delete(sm.sessions, id)

	session.ID = ulid.Make().String()
	session.LastSeenAt = time.Now()
	sm.sessions[session.ID] = session

	return copySession(session), nil
}

// Destroy removes a session. Destroying an absent session is a no-op.
func (sm *SessionManager) Destroy(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()
}

// DestroyIdle removes sessions untouched for longer than SessionIdleExpiry
// and returns the count of removed sessions.
func (sm *SessionManager) DestroyIdle() int {
	cutoff := time.Now().Add(-SessionIdleExpiry)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id, session := range sm.sessions {
		if session.LastSeenAt.Before(cutoff) {
			delete(sm.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
