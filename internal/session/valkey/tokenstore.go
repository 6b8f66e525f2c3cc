package sessionvalkey

import (
	"context"
	"errors"

	"github.com/valkey-io/valkey-go"

	"github.com/ipsfa/inventario-client/internal/serviceerr"
	"github.com/ipsfa/inventario-client/internal/session"
)

const objectTypeToken = "token"

var (
	ErrGetTokens   = errors.New("getting tokens from store")
	ErrStoreTokens = errors.New("setting tokens into storage")
	ErrClearTokens = errors.New("deleting tokens from storage")
)

// TokenStore keeps the token pair of one profile under <prefix>:token:<profile>.
type TokenStore struct {
	store   *store
	profile string
}

var _ = session.TokenStore(&TokenStore{})

func NewTokenStore(valkeyClient valkey.Client, prefix, profile string) *TokenStore {
	return &TokenStore{
		store:   newStore(valkeyClient, prefix),
		profile: profile,
	}
}

func (t *TokenStore) Load(ctx context.Context) (session.Tokens, error) {
	var tokens session.Tokens
	if err := t.store.Get(ctx, objectTypeToken, t.profile, &tokens); err != nil {
		if errors.Is(err, serviceerr.ErrNotFound) {
			return session.Tokens{}, nil
		}

		return session.Tokens{}, errors.Join(ErrGetTokens, err)
	}

	return tokens, nil
}

func (t *TokenStore) Save(ctx context.Context, tokens session.Tokens) error {
	if err := t.store.Set(ctx, objectTypeToken, t.profile, tokens); err != nil {
		return errors.Join(ErrStoreTokens, err)
	}

	return nil
}

func (t *TokenStore) Clear(ctx context.Context) error {
	if err := t.store.Destroy(ctx, objectTypeToken, t.profile); err != nil {
		return errors.Join(ErrClearTokens, err)
	}

	return nil
}
