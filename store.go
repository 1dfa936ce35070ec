package goSession

import "sync"

// tokenStore is the single owner of the bearer token and the authenticated
// principal. It holds no validation logic; readers always observe the
// latest value. Writers are Login, Logout, and the refresh coordinator's
// completion step — nothing else.
type tokenStore struct {
	mu        sync.RWMutex
	token     string
	principal *Principal
}

func (s *tokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *tokenStore) ClearToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *tokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *tokenStore) SetPrincipal(p Principal) {
	s.mu.Lock()
	s.principal = &p
	s.mu.Unlock()
}

func (s *tokenStore) ClearPrincipal() {
	s.mu.Lock()
	s.principal = nil
	s.mu.Unlock()
}

// Principal returns a copy of the authenticated principal, or nil.
func (s *tokenStore) Principal() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}
