package business

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/ipsfa/inventario-client/internal/config"
	"github.com/ipsfa/inventario-client/internal/session"
	sessionfile "github.com/ipsfa/inventario-client/internal/session/file"
	sessionmock "github.com/ipsfa/inventario-client/internal/session/mock"
	sessionsql "github.com/ipsfa/inventario-client/internal/session/sql"
	sessionvalkey "github.com/ipsfa/inventario-client/internal/session/valkey"
)

// newTokenStore opens the backend selected by tokenStore.type. closeFn releases its connections.
func newTokenStore(ctx context.Context, cfg *config.Config) (_ session.TokenStore, closeFn func(), _ error) {
	profile := cfg.TokenStore.Profile

	switch cfg.TokenStore.Type {
	case config.TokenStoreFile, "":
		return sessionfile.NewTokenStore(cfg.TokenStore.Path, profile), func() {}, nil
	case config.TokenStoreMemory:
		return sessionmock.NewInMemTokenStore(), func() {}, nil
	case config.TokenStoreValKey:
		client, err := newValKeyClient(cfg.ValKey)
		if err != nil {
			return nil, nil, err
		}

		return sessionvalkey.NewTokenStore(client, cfg.ValKey.Prefix, profile), client.Close, nil
	case config.TokenStorePostgres:
		db, err := newPgxPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		return sessionsql.NewTokenStore(db, profile), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store type %q", cfg.TokenStore.Type)
	}
}

func newValKeyClient(conf config.ValKey) (valkey.Client, error) {
	host, user, password, err := config.ValKeyCredentials(conf)
	if err != nil {
		return nil, err
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{host},
		Username:    user,
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return client, nil
}

func newPgxPool(ctx context.Context, conf config.Database) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(conf)
	if err != nil {
		return nil, fmt.Errorf("making dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pgxpool config: %w", err)
	}

	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	return db, nil
}
