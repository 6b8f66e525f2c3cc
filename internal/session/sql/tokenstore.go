package sessionsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipsfa/inventario-client/internal/serviceerr"
	"github.com/ipsfa/inventario-client/internal/session"
)

// TokenStore keeps the token pair of one profile in the client_tokens table.
type TokenStore struct {
	db      *pgxpool.Pool
	profile string
}

var _ = session.TokenStore(&TokenStore{})

func NewTokenStore(db *pgxpool.Pool, profile string) *TokenStore {
	return &TokenStore{
		db:      db,
		profile: profile,
	}
}

func (s *TokenStore) Load(ctx context.Context) (tokens session.Tokens, _ error) {
	if err := s.db.QueryRow(ctx, `SELECT access_token, refresh_token
FROM client_tokens
WHERE profile = $1;`,
		s.profile,
	).Scan(&tokens.Access, &tokens.Refresh); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Tokens{}, nil
		}

		return session.Tokens{}, fmt.Errorf("selecting from client_tokens: %w", err)
	}

	return tokens, nil
}

func (s *TokenStore) Save(ctx context.Context, tokens session.Tokens) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO client_tokens (profile, access_token, refresh_token, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (profile)
	DO UPDATE SET (access_token, refresh_token, updated_at) =
		(EXCLUDED.access_token, EXCLUDED.refresh_token, EXCLUDED.updated_at);`,
		s.profile, tokens.Access, tokens.Refresh,
	); err != nil {
		if err, ok := handlePgError(err); ok {
			return err
		}

		return fmt.Errorf("inserting into client_tokens: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}

	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM client_tokens WHERE profile = $1;`, s.profile); err != nil {
		return fmt.Errorf("deleting from client_tokens: %w", err)
	}

	return nil
}

// handlePgError maps a unique violation to serviceerr.ErrConflict.
func handlePgError(err error) (error, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return serviceerr.ErrConflict, true
	}

	return err, false
}
