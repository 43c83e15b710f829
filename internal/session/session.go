// Package session holds the ledger credential for browser and API callers.
//
// A *Session rides on the request context. The Manager reads it to act as the
// ledger client's port.TokenProvider, and Navigator records where a view
// should go next, so a 401 from the ledger turns into a cleared cookie and a
// redirect on the way out.
package session

import (
	"context"
	"sync"
)

type ctxKey struct{}

// Session is the per-request view of a stored credential.
type Session struct {
	// ID is the store key; empty for bearer-header sessions, which are never stored.
	ID string

	mu         sync.Mutex
	token      string
	fromCookie bool
	cleared    bool
	redirect   string
}

// NewSession creates a request-scoped session.
func NewSession(id, token string, fromCookie bool) *Session {
	return &Session{ID: id, token: token, fromCookie: fromCookie}
}

// Token returns the credential unless it was cleared.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared || s.token == "" {
		return "", false
	}
	return s.token, true
}

// Cleared reports whether the credential was dropped during this request.
func (s *Session) Cleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

// Redirect returns the path recorded by Navigator, if any.
func (s *Session) Redirect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirect
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cleared = true
}

func (s *Session) setRedirect(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect = path
}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Navigator records redirects on the request's session.
type Navigator struct{}

// GoTo records path as the view the caller should move to.
func (Navigator) GoTo(ctx context.Context, path string) {
	if s := FromContext(ctx); s != nil {
		s.setRedirect(path)
	}
}
