package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/apiclient"
	"github.com/ipsfa/inventario-client/internal/resource"
	"github.com/ipsfa/inventario-client/internal/serviceerr"
)

// RouteLogin is the navigation target after logout.
const RouteLogin = "login"

// Navigator moves the application to a named route or path.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// AuthError is returned by a failed login. Message is the text to show the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type Option func(*Manager)

// WithRevokeOnLogout makes Logout blacklist the refresh token before clearing it.
func WithRevokeOnLogout(enabled bool) Option {
	return func(m *Manager) { m.revokeOnLogout = enabled }
}

// Manager owns the authentication state of the application.
type Manager struct {
	creds *Credentials
	store TokenStore
	api   AuthAPI
	nav   Navigator

	revokeOnLogout bool

	// tokenMu serialises writes of the token pair to memory and storage.
	tokenMu sync.Mutex

	mu    sync.RWMutex
	state State
	user  *UserProfile
}

func NewManager(creds *Credentials, store TokenStore, api AuthAPI, nav Navigator, opts ...Option) *Manager {
	m := &Manager{
		creds: creds,
		store: store,
		api:   api,
		nav:   nav,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// CurrentUser returns a copy of the logged in user.
func (m *Manager) CurrentUser() (UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return UserProfile{}, false
	}

	return *m.user, true
}

func (m *Manager) IsAuthenticated() bool {
	return m.creds.IsAuthenticated()
}

// AccessTokenExpiry decodes the expiry of the held access token.
func (m *Manager) AccessTokenExpiry() (TokenExpiry, error) {
	token := m.creds.AccessToken()
	if token == "" {
		return TokenExpiry{}, serviceerr.ErrUnauthenticated
	}

	return ParseTokenExpiry(token)
}

func (m *Manager) Status() Status {
	st := Status{State: m.State()}
	if user, ok := m.CurrentUser(); ok {
		st.User = &user
	}
	if exp, err := m.AccessTokenExpiry(); err == nil {
		st.TokenExpiry = &exp
	}

	return st
}

// Login exchanges the credentials for a token pair and loads the profile.
// Any failure leaves the session fully logged out.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.setState(StateAuthenticating)

	tokens, err := m.api.ObtainTokens(apiclient.Anonymous(ctx), username, password)
	if err != nil {
		return m.failLogin(ctx, err)
	}

	if err := m.persist(ctx, tokens); err != nil {
		return m.failLogin(ctx, err)
	}
	m.setState(StateAuthenticated)

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		return m.failLogin(ctx, err)
	}
	m.setUser(&user)

	slogctx.Info(ctx, "Logged in", "username", user.Username)

	return nil
}

func (m *Manager) failLogin(ctx context.Context, cause error) error {
	if err := m.clearTokens(ctx); err != nil {
		slogctx.Warn(ctx, "Could not clear stored tokens", "error", err)
	}
	m.setUser(nil)
	m.setState(StateFailed)

	authErr := &AuthError{Message: loginMessage(cause), Err: cause}
	slogctx.Warn(ctx, "Login failed", "error", authErr.Message)

	return authErr
}

// loginMessage prefers the detail sent by the server over the generic error text.
func loginMessage(err error) string {
	var respErr *apiclient.ResponseError
	if errors.As(err, &respErr) {
		if detail, ok := respErr.StringField("detail"); ok && detail != "" {
			return detail
		}
	}

	return err.Error()
}

// Initialize restores a persisted session. A missing token is not an error.
// A token the server rejects clears the session and yields ErrSessionExpired.
func (m *Manager) Initialize(ctx context.Context) error {
	tokens, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading stored tokens: %w", err)
	}

	if tokens.Access == "" {
		m.creds.clear()
		m.setUser(nil)
		m.setState(StateUnauthenticated)

		return nil
	}

	m.creds.set(tokens)
	m.setState(StateAuthenticated)

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		if clearErr := m.clearTokens(ctx); clearErr != nil {
			slogctx.Warn(ctx, "Could not clear stored tokens", "error", clearErr)
		}
		m.setUser(nil)
		m.setState(StateUnauthenticated)

		slogctx.Info(ctx, "Stored session is no longer valid", "error", err)

		return fmt.Errorf("%w: %w", serviceerr.ErrSessionExpired, err)
	}
	m.setUser(&user)

	return nil
}

// Logout clears the session and navigates to the login route. It is safe to call repeatedly.
func (m *Manager) Logout(ctx context.Context) error {
	if refresh := m.creds.RefreshToken(); m.revokeOnLogout && refresh != "" {
		if err := m.api.RevokeToken(ctx, refresh); err != nil {
			slogctx.Warn(ctx, "Could not revoke refresh token", "error", err)
		}
	}

	clearErr := m.clearTokens(ctx)
	m.setUser(nil)
	m.setState(StateUnauthenticated)

	if err := m.nav.Navigate(ctx, RouteLogin); err != nil {
		slogctx.Warn(ctx, "Navigation after logout failed", "error", err)
	}

	if clearErr != nil {
		return fmt.Errorf("clearing stored tokens: %w", clearErr)
	}

	return nil
}

// UpdateProfile edits the own account and replaces the current user with the result.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (UserProfile, error) {
	if !m.IsAuthenticated() {
		return UserProfile{}, serviceerr.ErrUnauthenticated
	}

	user, err := m.api.UpdateProfile(ctx, update)
	if err != nil {
		return UserProfile{}, &resource.Error{
			Message: resource.MutationMessage(err, "error updating profile"),
			Err:     err,
		}
	}
	m.setUser(&user)

	return user, nil
}

// ChangePassword changes the own password and reloads the profile.
func (m *Manager) ChangePassword(ctx context.Context, change PasswordChange) error {
	if !m.IsAuthenticated() {
		return serviceerr.ErrUnauthenticated
	}

	if err := m.api.ChangePassword(ctx, change); err != nil {
		return &resource.Error{
			Message: resource.MutationMessage(err, "error changing password"),
			Err:     err,
		}
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		slogctx.Warn(ctx, "Could not reload profile after password change", "error", err)
		return nil
	}
	m.setUser(&user)

	return nil
}

func (m *Manager) persist(ctx context.Context, tokens Tokens) error {
	m.tokenMu.Lock()
	defer m.tokenMu.Unlock()

	if err := m.store.Save(ctx, tokens); err != nil {
		return fmt.Errorf("storing tokens: %w", err)
	}
	m.creds.set(tokens)

	return nil
}

// clearTokens always clears memory, even when the store fails.
func (m *Manager) clearTokens(ctx context.Context) error {
	m.tokenMu.Lock()
	defer m.tokenMu.Unlock()

	m.creds.clear()

	return m.store.Clear(ctx)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = s
}

func (m *Manager) setUser(u *UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = u
}
