package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/apiclient"
	"github.com/ipsfa/inventario-client/internal/resource"
	"github.com/ipsfa/inventario-client/internal/serviceerr"
	"github.com/ipsfa/inventario-client/internal/session"
	sessionmock "github.com/ipsfa/inventario-client/internal/session/mock"
)

var testUser = session.UserProfile{
	ID:        3,
	Username:  "mperez",
	FirstName: "María",
	LastName:  "Pérez",
	Email:     "mperez@example.com",
	Role:      "Administrador",
	FullName:  "María Pérez",
}

type fakeAuthAPI struct {
	mu sync.Mutex

	tokens     session.Tokens
	obtainErr  error
	user       session.UserProfile
	userErr    error
	updateErr  error
	passErr    error
	revokeErr  error
	revoked    []string
	userCalls  int
	passChange *session.PasswordChange
}

func (f *fakeAuthAPI) ObtainTokens(_ context.Context, _, _ string) (session.Tokens, error) {
	if f.obtainErr != nil {
		return session.Tokens{}, f.obtainErr
	}
	return f.tokens, nil
}

func (f *fakeAuthAPI) CurrentUser(_ context.Context) (session.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return session.UserProfile{}, f.userErr
	}
	return f.user, nil
}

func (f *fakeAuthAPI) UpdateProfile(_ context.Context, update session.ProfileUpdate) (session.UserProfile, error) {
	if f.updateErr != nil {
		return session.UserProfile{}, f.updateErr
	}
	u := f.user
	if update.Email != nil {
		u.Email = *update.Email
	}
	return u, nil
}

func (f *fakeAuthAPI) ChangePassword(_ context.Context, change session.PasswordChange) error {
	f.passChange = &change
	return f.passErr
}

func (f *fakeAuthAPI) RevokeToken(_ context.Context, refresh string) error {
	f.revoked = append(f.revoked, refresh)
	return f.revokeErr
}

type recordingNavigator struct {
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.targets = append(n.targets, target)
	return nil
}

func newManager(t *testing.T, api *fakeAuthAPI, store *sessionmock.TokenStore, opts ...session.Option) (*session.Manager, *session.Credentials, *recordingNavigator) {
	t.Helper()
	creds := session.NewCredentials()
	nav := &recordingNavigator{}
	return session.NewManager(creds, store, api, nav, opts...), creds, nav
}

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access",
		"user_id":    3,
		"iat":        exp.Add(-time.Hour).Unix(),
		"exp":        exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func TestManager_Login(t *testing.T) {
	validTokens := session.Tokens{Access: "access-1", Refresh: "refresh-1"}

	tests := []struct {
		name        string
		api         *fakeAuthAPI
		storeOpts   []sessionmock.TokenStoreOption
		wantErr     string
		wantState   session.State
		wantStored  session.Tokens
		wantUser    bool
		wantAuthErr bool
	}{
		{
			name:       "valid credentials",
			api:        &fakeAuthAPI{tokens: validTokens, user: testUser},
			wantState:  session.StateAuthenticated,
			wantStored: validTokens,
			wantUser:   true,
		},
		{
			name: "rejected credentials use server detail",
			api: &fakeAuthAPI{obtainErr: &apiclient.ResponseError{
				StatusCode: 401,
				Body:       []byte(`{"detail":"No active account found with the given credentials"}`),
			}},
			wantErr:     "No active account found with the given credentials",
			wantState:   session.StateFailed,
			wantAuthErr: true,
		},
		{
			name:        "rejected without detail uses status text",
			api:         &fakeAuthAPI{obtainErr: &apiclient.ResponseError{StatusCode: 400, Body: []byte(`{"password":["required"]}`)}},
			wantErr:     "request failed with status code 400",
			wantState:   session.StateFailed,
			wantAuthErr: true,
		},
		{
			name:        "transport failure",
			api:         &fakeAuthAPI{obtainErr: &apiclient.TransportError{Err: errors.New("dial tcp: connection refused")}},
			wantErr:     "dial tcp: connection refused",
			wantState:   session.StateFailed,
			wantAuthErr: true,
		},
		{
			name:        "profile fetch failure clears tokens",
			api:         &fakeAuthAPI{tokens: validTokens, userErr: &apiclient.ResponseError{StatusCode: 500}},
			wantErr:     "request failed with status code 500",
			wantState:   session.StateFailed,
			wantAuthErr: true,
		},
		{
			name:        "store failure",
			api:         &fakeAuthAPI{tokens: validTokens, user: testUser},
			storeOpts:   []sessionmock.TokenStoreOption{sessionmock.WithSaveError(errors.New("disk full"))},
			wantErr:     "storing tokens: disk full",
			wantState:   session.StateFailed,
			wantAuthErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := sessionmock.NewInMemTokenStore(tt.storeOpts...)
			m, creds, _ := newManager(t, tt.api, store)

			err := m.Login(t.Context(), "mperez", "secret")

			assert.Equal(t, tt.wantState, m.State())
			assert.Equal(t, tt.wantStored, store.Tokens())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				if tt.wantAuthErr {
					var authErr *session.AuthError
					assert.ErrorAs(t, err, &authErr)
				}
				assert.False(t, m.IsAuthenticated())
				assert.Empty(t, creds.AccessToken())
				_, ok := m.CurrentUser()
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.True(t, m.IsAuthenticated())
			assert.Equal(t, "access-1", creds.AccessToken())
			user, ok := m.CurrentUser()
			require.True(t, ok)
			assert.Equal(t, testUser, user)
		})
	}
}

func TestManager_Logout(t *testing.T) {
	api := &fakeAuthAPI{tokens: session.Tokens{Access: "a", Refresh: "r"}, user: testUser}
	store := sessionmock.NewInMemTokenStore()
	m, _, nav := newManager(t, api, store)
	require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

	for range 2 {
		require.NoError(t, m.Logout(t.Context()))
		assert.False(t, m.IsAuthenticated())
		assert.Equal(t, session.StateUnauthenticated, m.State())
		assert.True(t, store.Tokens().IsZero())
		_, ok := m.CurrentUser()
		assert.False(t, ok)
	}

	assert.Equal(t, []string{session.RouteLogin, session.RouteLogin}, nav.targets)
	assert.Empty(t, api.revoked)
}

func TestManager_LogoutRevoke(t *testing.T) {
	t.Run("revokes the refresh token", func(t *testing.T) {
		api := &fakeAuthAPI{tokens: session.Tokens{Access: "a", Refresh: "r"}, user: testUser}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore(), session.WithRevokeOnLogout(true))
		require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

		require.NoError(t, m.Logout(t.Context()))
		require.NoError(t, m.Logout(t.Context()))

		assert.Equal(t, []string{"r"}, api.revoked)
	})

	t.Run("revoke failure still logs out", func(t *testing.T) {
		api := &fakeAuthAPI{
			tokens:    session.Tokens{Access: "a", Refresh: "r"},
			user:      testUser,
			revokeErr: &apiclient.ResponseError{StatusCode: 401},
		}
		store := sessionmock.NewInMemTokenStore()
		m, _, nav := newManager(t, api, store, session.WithRevokeOnLogout(true))
		require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

		require.NoError(t, m.Logout(t.Context()))
		assert.False(t, m.IsAuthenticated())
		assert.True(t, store.Tokens().IsZero())
		assert.Equal(t, []string{session.RouteLogin}, nav.targets)
	})
}

func TestManager_LogoutClearFailure(t *testing.T) {
	store := sessionmock.NewInMemTokenStore(
		sessionmock.WithTokens(session.Tokens{Access: "a", Refresh: "r"}),
		sessionmock.WithClearError(errors.New("connection reset")),
	)
	m, creds, nav := newManager(t, &fakeAuthAPI{user: testUser}, store)
	require.NoError(t, m.Initialize(t.Context()))

	err := m.Logout(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, creds.AccessToken())
	assert.Equal(t, []string{session.RouteLogin}, nav.targets)
}

func TestManager_Initialize(t *testing.T) {
	stored := session.Tokens{Access: "stored-access", Refresh: "stored-refresh"}

	t.Run("no stored token", func(t *testing.T) {
		api := &fakeAuthAPI{user: testUser}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())

		require.NoError(t, m.Initialize(t.Context()))
		assert.Equal(t, session.StateUnauthenticated, m.State())
		assert.False(t, m.IsAuthenticated())
		assert.Zero(t, api.userCalls)
	})

	t.Run("accepted token", func(t *testing.T) {
		m, creds, _ := newManager(t, &fakeAuthAPI{user: testUser}, sessionmock.NewInMemTokenStore(sessionmock.WithTokens(stored)))

		require.NoError(t, m.Initialize(t.Context()))
		assert.Equal(t, session.StateAuthenticated, m.State())
		assert.Equal(t, "stored-access", creds.AccessToken())
		user, ok := m.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, "mperez", user.Username)
	})

	t.Run("rejected token clears everything", func(t *testing.T) {
		store := sessionmock.NewInMemTokenStore(sessionmock.WithTokens(stored))
		api := &fakeAuthAPI{userErr: &apiclient.ResponseError{StatusCode: 401, Body: []byte(`{"detail":"Given token not valid for any token type"}`)}}
		m, creds, _ := newManager(t, api, store)

		err := m.Initialize(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, serviceerr.ErrSessionExpired)
		assert.ErrorIs(t, err, serviceerr.ErrUnauthenticated)
		assert.Equal(t, session.StateUnauthenticated, m.State())
		assert.Empty(t, creds.AccessToken())
		assert.True(t, store.Tokens().IsZero())
	})

	t.Run("store read failure", func(t *testing.T) {
		loadErr := errors.New("permission denied")
		m, _, _ := newManager(t, &fakeAuthAPI{}, sessionmock.NewInMemTokenStore(sessionmock.WithLoadError(loadErr)))

		err := m.Initialize(t.Context())
		assert.ErrorIs(t, err, loadErr)
		assert.False(t, m.IsAuthenticated())
	})
}

func TestManager_UpdateProfile(t *testing.T) {
	email := "maria@example.com"

	t.Run("requires authentication", func(t *testing.T) {
		m, _, _ := newManager(t, &fakeAuthAPI{user: testUser}, sessionmock.NewInMemTokenStore())

		_, err := m.UpdateProfile(t.Context(), session.ProfileUpdate{Email: &email})
		assert.ErrorIs(t, err, serviceerr.ErrUnauthenticated)
	})

	t.Run("updates current user", func(t *testing.T) {
		api := &fakeAuthAPI{tokens: session.Tokens{Access: "a", Refresh: "r"}, user: testUser}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())
		require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

		user, err := m.UpdateProfile(t.Context(), session.ProfileUpdate{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, email, user.Email)
		current, _ := m.CurrentUser()
		assert.Equal(t, email, current.Email)
	})

	t.Run("validation error keeps session", func(t *testing.T) {
		api := &fakeAuthAPI{
			tokens:    session.Tokens{Access: "a", Refresh: "r"},
			user:      testUser,
			updateErr: &apiclient.ResponseError{StatusCode: 400, Body: []byte(`{"email":["Enter a valid email address."]}`)},
		}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())
		require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

		_, err := m.UpdateProfile(t.Context(), session.ProfileUpdate{Email: &email})
		require.Error(t, err)
		assert.Equal(t, "could not process request: email: Enter a valid email address.", err.Error())
		assert.ErrorIs(t, err, serviceerr.ErrValidation)
		assert.True(t, m.IsAuthenticated())
		current, _ := m.CurrentUser()
		assert.Equal(t, testUser.Email, current.Email)
	})
}

func TestManager_ChangePassword(t *testing.T) {
	change := session.PasswordChange{OldPassword: "old", NewPassword: "new-secret", NewPasswordConfirm: "new-secret"}

	t.Run("requires authentication", func(t *testing.T) {
		api := &fakeAuthAPI{}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())

		assert.ErrorIs(t, m.ChangePassword(t.Context(), change), serviceerr.ErrUnauthenticated)
		assert.Nil(t, api.passChange)
	})

	t.Run("refetches profile", func(t *testing.T) {
		api := &fakeAuthAPI{tokens: session.Tokens{Access: "a", Refresh: "r"}, user: testUser}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())
		require.NoError(t, m.Login(t.Context(), "mperez", "secret"))
		callsAfterLogin := api.userCalls

		require.NoError(t, m.ChangePassword(t.Context(), change))
		assert.Equal(t, &change, api.passChange)
		assert.Equal(t, callsAfterLogin+1, api.userCalls)
	})

	t.Run("server rejection", func(t *testing.T) {
		api := &fakeAuthAPI{
			tokens:  session.Tokens{Access: "a", Refresh: "r"},
			user:    testUser,
			passErr: &apiclient.ResponseError{StatusCode: 400, Body: []byte(`{"old_password":["La contraseña actual es incorrecta."]}`)},
		}
		m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())
		require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

		err := m.ChangePassword(t.Context(), change)
		var resErr *resource.Error
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "could not process request: old_password: La contraseña actual es incorrecta.", resErr.Message)
		assert.True(t, m.IsAuthenticated())
	})
}

func TestManager_AccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	api := &fakeAuthAPI{tokens: session.Tokens{Access: mintToken(t, exp), Refresh: "r"}, user: testUser}
	m, _, _ := newManager(t, api, sessionmock.NewInMemTokenStore())

	_, err := m.AccessTokenExpiry()
	assert.ErrorIs(t, err, serviceerr.ErrUnauthenticated)

	require.NoError(t, m.Login(t.Context(), "mperez", "secret"))

	got, err := m.AccessTokenExpiry()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got.ExpiresAt))
	assert.False(t, got.Expired(time.Now()))
	assert.True(t, got.Expired(exp))

	st := m.Status()
	assert.Equal(t, session.StateAuthenticated, st.State)
	require.NotNil(t, st.TokenExpiry)
	require.NotNil(t, st.User)
}

func TestParseTokenExpiry(t *testing.T) {
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
	raw, err := noExp.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = session.ParseTokenExpiry(raw)
	assert.ErrorIs(t, err, session.ErrNoExpiry)

	_, err = session.ParseTokenExpiry("not-a-jwt")
	assert.Error(t, err)
}
