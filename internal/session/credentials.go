package session

import "sync"

// Credentials holds the in-memory token pair. The API client reads the
// access token from it on every request and the navigation guard uses it
// to tell whether the session is authenticated. Only the Manager writes it.
type Credentials struct {
	mu     sync.RWMutex
	tokens Tokens
}

func NewCredentials() *Credentials {
	return &Credentials{}
}

func (c *Credentials) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tokens.Access
}

func (c *Credentials) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tokens.Refresh
}

// IsAuthenticated is true iff an access token is held.
func (c *Credentials) IsAuthenticated() bool {
	return c.AccessToken() != ""
}

func (c *Credentials) set(tokens Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens = tokens
}

func (c *Credentials) clear() {
	c.set(Tokens{})
}
