package business

import (
	"context"
	"errors"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/apiclient"
	"github.com/ipsfa/inventario-client/internal/config"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/serviceerr"
	"github.com/ipsfa/inventario-client/internal/session"
)

// App is the wired client: one session, one router and one API client shared by all stores.
type App struct {
	Config  *config.Config
	Session *session.Manager
	Router  *navigation.Router
	Client  *apiclient.Client
	Auth    *inventory.AuthService
	Stores  *inventory.Stores
	Catalog *inventory.Catalog

	closeFn func()
}

// NewApp builds the application from cfg. The session is not restored yet, see Start.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, closeFn, err := newTokenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialising the token store: %w", err)
	}

	app, err := newApp(cfg, store)
	if err != nil {
		closeFn()
		return nil, err
	}

	app.closeFn = closeFn

	return app, nil
}

func newApp(cfg *config.Config, store session.TokenStore) (*App, error) {
	creds := session.NewCredentials()
	router := navigation.NewRouter(creds)

	opts := []apiclient.Option{
		apiclient.WithTokenSource(creds),
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithTelemetry(cfg.Application),
	}
	if cfg.API.RateLimit > 0 {
		opts = append(opts, apiclient.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst))
	}

	client, err := apiclient.New(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating the api client: %w", err)
	}

	auth := inventory.NewAuthService(client)
	stores := inventory.NewStores(client)

	return &App{
		Config: cfg,
		Session: session.NewManager(creds, store, auth, router,
			session.WithRevokeOnLogout(cfg.Session.RevokeOnLogout),
		),
		Router:  router,
		Client:  client,
		Auth:    auth,
		Stores:  stores,
		Catalog: inventory.NewCatalog(stores.Categories, stores.Units, cfg.Catalog.CacheTTL),
		closeFn: func() {},
	}, nil
}

// Start restores the stored session. A session rejected by the server is
// logged and leaves the application unauthenticated.
func (a *App) Start(ctx context.Context) error {
	err := a.Session.Initialize(ctx)
	if errors.Is(err, serviceerr.ErrSessionExpired) {
		slogctx.Warn(ctx, "Stored session is no longer valid", "error", err)
		return nil
	}

	return err
}

// Enter navigates to route through the guard. A redirect to the login route
// is reported as serviceerr.ErrLoginRequired.
func (a *App) Enter(ctx context.Context, route string) (navigation.Location, error) {
	loc, err := a.Router.Resolve(route)
	if err != nil {
		return navigation.Location{}, err
	}

	reached, decision := a.Router.Guard(ctx, loc)
	if decision.Redirect == navigation.RouteLogin {
		return reached, serviceerr.ErrLoginRequired
	}

	return reached, nil
}

func (a *App) Close() {
	a.closeFn()
}
