package business

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"

	// Register pgx driver
	_ "github.com/jackc/pgx/v5/stdlib"

	slogctx "github.com/veqryn/slog-context"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/ipsfa/inventario-client/internal/config"
	migrations "github.com/ipsfa/inventario-client/sql"
)

// MigrateMain brings the client_tokens schema of the postgres token store up to date.
func MigrateMain(ctx context.Context, cfg *config.Config) error {
	db, release, err := openTracedDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer release()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("checking pending migrations: %w", err)
	}
	if !pending {
		slogctx.Info(ctx, "Token store schema is up to date", "version", current)
		return nil
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations from version %d: %w", current, err)
	}

	for _, r := range results {
		slogctx.Info(ctx, "Applied migration", "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}

	return nil
}

// openTracedDB opens a database/sql handle instrumented with otelsql. The
// returned function closes it and unregisters its metrics.
func openTracedDB(ctx context.Context, conf config.Database) (*sql.DB, func(), error) {
	connStr, err := config.MakeConnStr(conf)
	if err != nil {
		return nil, nil, fmt.Errorf("making connection string from config: %w", err)
	}

	attrs := otelsql.WithAttributes(semconv.DBSystemNamePostgreSQL, semconv.DBNamespace(conf.Name))

	db, err := otelsql.Open("pgx", connStr, attrs)
	if err != nil {
		return nil, nil, oops.In("migrate").Wrapf(err, "opening DB connection")
	}

	reg, err := otelsql.RegisterDBStatsMetrics(db, attrs)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("registering db stats metrics: %w", err)
	}

	return db, func() {
		if err := reg.Unregister(); err != nil {
			slogctx.Warn(ctx, "Failed to unregister db stats metrics", "error", err)
		}
		_ = db.Close()
	}, nil
}
