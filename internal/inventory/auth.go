package inventory

import (
	"context"
	"fmt"

	"github.com/ipsfa/inventario-client/internal/session"
)

const (
	pathToken          = "/token/"
	pathTokenBlacklist = "/token/blacklist/"
	pathCurrentUser    = "/users/me/"
	pathProfile        = "/perfil/me/"
	pathChangePassword = "/perfil/change-password/"
)

// AuthService talks to the authentication and profile endpoints.
type AuthService struct {
	api API
}

var _ = session.AuthAPI(&AuthService{})

func NewAuthService(api API) *AuthService {
	return &AuthService{api: api}
}

func (a *AuthService) ObtainTokens(ctx context.Context, username, password string) (session.Tokens, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var tokens session.Tokens
	if err := a.api.Post(ctx, pathToken, body, &tokens); err != nil {
		return session.Tokens{}, err
	}

	if tokens.Access == "" {
		return session.Tokens{}, fmt.Errorf("token response has no access token")
	}

	return tokens, nil
}

func (a *AuthService) CurrentUser(ctx context.Context) (session.UserProfile, error) {
	var user session.UserProfile
	if err := a.api.Get(ctx, pathCurrentUser, nil, &user); err != nil {
		return session.UserProfile{}, err
	}

	return user, nil
}

func (a *AuthService) UpdateProfile(ctx context.Context, update session.ProfileUpdate) (session.UserProfile, error) {
	var user session.UserProfile
	if err := a.api.Patch(ctx, pathProfile, update, &user); err != nil {
		return session.UserProfile{}, err
	}

	return user, nil
}

func (a *AuthService) ChangePassword(ctx context.Context, change session.PasswordChange) error {
	return a.api.Put(ctx, pathChangePassword, change, nil)
}

func (a *AuthService) RevokeToken(ctx context.Context, refresh string) error {
	return a.api.Post(ctx, pathTokenBlacklist, map[string]string{"refresh": refresh}, nil)
}
