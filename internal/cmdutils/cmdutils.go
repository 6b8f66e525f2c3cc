package cmdutils

import (
	"context"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/config"
)

const healthStatusTimeout = 5 * time.Second

// ConfigPaths are searched in order for config.yaml.
var ConfigPaths = []string{
	"/etc/inventario",
	"$HOME/.inventario",
	".",
}

type BusinessFunc func(context.Context, *config.Config) error

type WrapperFunc func(context.Context, BusinessFunc, *config.Config) error

// runMode selects the ambient services started around a command.
type runMode struct {
	telemetry    bool
	statusServer bool
}

var (
	jobMode     = runMode{}
	serviceMode = runMode{telemetry: true, statusServer: true}
)

// CobraCommand builds a command without arguments that loads the
// configuration and runs businessFunc through wrapperFunc.
func CobraCommand(use, short, long, buildInfo string, wrapperFunc WrapperFunc, businessFunc BusinessFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := wrapperFunc(cmd.Context(), businessFunc, cfg); err != nil {
				return fmt.Errorf("running %s: %w", use, err)
			}

			return nil
		},
	}
}

// RunAsService adds telemetry and the status server, for long running commands.
func RunAsService(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	return serviceMode.run(ctx, fn, cfg)
}

func RunAsJob(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	return jobMode.run(ctx, fn, cfg)
}

func (m runMode) run(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	if err := logger.InitAsDefault(cfg.Logger, cfg.Application); err != nil {
		return oops.In("cli").Wrapf(err, "initialising the logger")
	}

	slogctx.Debug(ctx, "Starting command",
		slog.String("tokenStore", string(cfg.TokenStore.Type)),
		slog.String("api", cfg.API.BaseURL),
		slog.Bool("service", m.statusServer))

	if m.telemetry {
		if err := otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger); err != nil {
			return oops.In("cli").Wrapf(err, "initialising telemetry")
		}
	}

	if m.statusServer {
		go serveStatus(ctx, cfg)
	}

	if err := fn(ctx, cfg); err != nil {
		return oops.In("cli").Wrapf(err, "running the command")
	}

	return nil
}

// LoadConfig reads config.yaml from ConfigPaths and stamps the build version.
func LoadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	if err := commoncfg.LoadConfig(cfg, map[string]any{}, ConfigPaths...); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo); err != nil {
		return nil, fmt.Errorf("stamping build version: %w", err)
	}

	return cfg, nil
}

// serveStatus runs the status server and terminates the process when it fails.
func serveStatus(ctx context.Context, cfg *config.Config) {
	err := startStatusServer(ctx, cfg)
	if err == nil {
		return
	}

	slogctx.Error(ctx, "Status server stopped", "error", err)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
}

func startStatusServer(ctx context.Context, cfg *config.Config) error {
	checks, err := readinessChecks(cfg)
	if err != nil {
		return err
	}

	liveness := health.NewHandler(health.NewChecker(health.WithDisabledAutostart()))
	readiness := health.NewHandler(health.NewChecker(checks...))

	err = status.Start(ctx, &cfg.BaseConfig, status.WithLiveness(liveness), status.WithReadiness(readiness))
	if err != nil {
		return fmt.Errorf("starting status server: %w", err)
	}

	return nil
}

// readinessChecks adds a token store database check when the postgres backend is used.
func readinessChecks(cfg *config.Config) ([]health.Option, error) {
	checks := []health.Option{
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeout),
		health.WithStatusListener(statusListener),
	}

	if cfg.TokenStore.Type != config.TokenStorePostgres {
		return checks, nil
	}

	connStr, err := config.MakeConnStr(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("making connection string from config: %w", err)
	}

	return append(checks, health.WithDatabaseChecker("pgx", connStr)), nil
}

func statusListener(ctx context.Context, state health.State) {
	attrs := []any{"status", state.Status}
	for name, check := range state.CheckState {
		if check.Result != nil {
			attrs = append(attrs, name, check.Result.Error())
		}
	}

	slogctx.Info(ctx, "Readiness changed", attrs...)
}
