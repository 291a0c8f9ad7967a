// Package session holds the identity of the current storefront user as an
// explicit object with a defined lifecycle, instead of ambient global
// state read ad hoc by every component.
package session

import "sync"

type Session struct {
	mu     sync.RWMutex
	userID string
	token  string
}

// Init creates the session at app start. Both fields may be empty for a
// guest session; a guest cart is an empty cart, not an error.
func Init(userID, token string) *Session {
	return &Session{userID: userID, token: token}
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Teardown clears the identity on logout. The session object stays valid;
// components see a guest session afterwards.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.token = ""
}
