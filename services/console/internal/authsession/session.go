package authsession

import (
	"sync"

	"github.com/voacom/commercial-intelligence-system/services/console/internal/platformclient"
)

// Session holds the platform access token for the console. It is the only
// place the token lives; callers read it per request and never cache it.
type Session struct {
	mu         sync.Mutex
	token      string
	closeHooks []func()
}

// New constructs an unauthenticated session.
func New() *Session {
	return &Session{}
}

// OnLogout registers a hook fired when the user logs out explicitly.
// Hooks run outside the session lock.
func (s *Session) OnLogout(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeHooks = append(s.closeHooks, hook)
}

// Login stores a fresh token.
func (s *Session) Login(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Logout drops the token and fires registered hooks.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	hooks := make([]func(), len(s.closeHooks))
	copy(hooks, s.closeHooks)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// Token returns the current token, if any.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Authenticated reports token presence. There is no expiry timer; staleness
// surfaces as a 401 on the next platform call.
func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Expire drops the token when err is a 401-classified platform failure and
// reports whether it did. Unlike Logout it fires no hooks; the caller decides
// what happens to any in-flight editing state.
func (s *Session) Expire(err error) bool {
	if !platformclient.IsUnauthorized(err) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return true
}

// ExpireAndClose is Expire plus the logout hooks. It is for 401s observed
// outside the editing flow, where an open editor must not outlive the token.
// Hooks run outside the session lock.
func (s *Session) ExpireAndClose(err error) bool {
	if !platformclient.IsUnauthorized(err) {
		return false
	}
	s.mu.Lock()
	s.token = ""
	hooks := make([]func(), len(s.closeHooks))
	copy(hooks, s.closeHooks)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
	return true
}
