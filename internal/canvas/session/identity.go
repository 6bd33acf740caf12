package session

import "sync"

// IdentityProvider is a synchronous read-through view of the signed-in
// user for code that cannot observe the identity store directly. The
// identity layer writes on sign-in and sign-out; readers never write
// back, keeping the data flow one-directional.
type IdentityProvider struct {
	mu     sync.RWMutex
	userID string
}

func NewIdentityProvider() *IdentityProvider {
	return &IdentityProvider{}
}

// SetUserID records the current user. An empty id means signed out.
func (p *IdentityProvider) SetUserID(userID string) {
	p.mu.Lock()
	p.userID = userID
	p.mu.Unlock()
}

// UserID returns the current user id, or empty when signed out.
func (p *IdentityProvider) UserID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userID
}
