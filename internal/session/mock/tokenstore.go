package sessionmock

import (
	"context"
	"sync"

	"github.com/ipsfa/inventario-client/internal/session"
)

type TokenStoreOption func(*TokenStore)

// TokenStore keeps the token pair in memory. It backs the "memory" store type and tests.
type TokenStore struct {
	mu     sync.Mutex
	tokens session.Tokens

	saves, clears int

	loadErr, saveErr, clearErr error
}

func WithTokens(tokens session.Tokens) TokenStoreOption {
	return func(s *TokenStore) { s.tokens = tokens }
}
func WithLoadError(err error) TokenStoreOption {
	return func(s *TokenStore) { s.loadErr = err }
}
func WithSaveError(err error) TokenStoreOption {
	return func(s *TokenStore) { s.saveErr = err }
}
func WithClearError(err error) TokenStoreOption {
	return func(s *TokenStore) { s.clearErr = err }
}

var _ = session.TokenStore(&TokenStore{})

func NewInMemTokenStore(opts ...TokenStoreOption) *TokenStore {
	s := &TokenStore{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *TokenStore) Load(_ context.Context) (session.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return session.Tokens{}, s.loadErr
	}

	return s.tokens, nil
}

func (s *TokenStore) Save(_ context.Context, tokens session.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tokens = tokens

	return nil
}

// Clear forgets the tokens even when a clear error is configured.
func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clears++
	s.tokens = session.Tokens{}

	return s.clearErr
}

// Tokens returns what is currently stored.
func (s *TokenStore) Tokens() session.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokens
}

func (s *TokenStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

func (s *TokenStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clears
}
