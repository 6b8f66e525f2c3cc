package session

import "context"

// TokenStore persists the token pair across runs.
// Load returns a zero Tokens and no error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

// AuthAPI is the part of the remote API the session depends on.
type AuthAPI interface {
	ObtainTokens(ctx context.Context, username, password string) (Tokens, error)
	CurrentUser(ctx context.Context) (UserProfile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (UserProfile, error)
	ChangePassword(ctx context.Context, change PasswordChange) error
	RevokeToken(ctx context.Context, refresh string) error
}
