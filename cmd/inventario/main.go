package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/cmd/inventario/assets"
	"github.com/ipsfa/inventario-client/cmd/inventario/auditlogs"
	"github.com/ipsfa/inventario-client/cmd/inventario/auth"
	"github.com/ipsfa/inventario-client/cmd/inventario/collections"
	"github.com/ipsfa/inventario-client/cmd/inventario/dashboard"
	"github.com/ipsfa/inventario-client/cmd/inventario/depreciation"
	"github.com/ipsfa/inventario-client/cmd/inventario/migrate"
	"github.com/ipsfa/inventario-client/cmd/inventario/movements"
	"github.com/ipsfa/inventario-client/cmd/inventario/reports"
	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/output"
	"github.com/ipsfa/inventario-client/internal/resource"
	"github.com/ipsfa/inventario-client/internal/session"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"

	isVersionCmd     bool
	gracefulShutdown time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Inventario client version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		isVersionCmd = true

		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inventario",
		Short:         "Inventario client",
		Long:          "Command line client for the asset inventory (bienes) administration API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	formats := make([]string, len(output.Formats))
	for i, f := range output.Formats {
		formats[i] = string(f)
	}

	cmd.PersistentFlags().StringP(cmdutils.FlagOutput, "o", string(output.FormatTable), "output format: "+strings.Join(formats, "|"))
	cmd.PersistentFlags().DurationVar(&gracefulShutdown, "graceful-shutdown", 0, "wait this long before exiting")

	cmd.AddCommand(
		versionCmd,
		auth.LoginCmd(BuildInfo),
		auth.LogoutCmd(BuildInfo),
		auth.WhoamiCmd(BuildInfo),
		auth.ProfileCmd(BuildInfo),
		auth.PasswordCmd(BuildInfo),
		assets.Cmd(BuildInfo),
		collections.ProvidersCmd(BuildInfo),
		collections.UnitsCmd(BuildInfo),
		collections.RolesCmd(BuildInfo),
		collections.UsersCmd(BuildInfo),
		collections.CategoriesCmd(BuildInfo),
		movements.Cmd(BuildInfo),
		depreciation.Cmd(BuildInfo),
		auditlogs.Cmd(BuildInfo),
		dashboard.Cmd(BuildInfo),
		reports.Cmd(BuildInfo),
		migrate.Cmd(BuildInfo),
	)

	return cmd
}

// userMessage prefers the message meant for display over the wrapped error chain.
func userMessage(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	var resErr *resource.Error
	if errors.As(err, &resErr) {
		return resErr.Message
	}

	var uploadErr *inventory.UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.Message
	}

	return err.Error()
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Debug(ctx, "Command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, "Error:", userMessage(err))

		return err
	}

	if !isVersionCmd && gracefulShutdown > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Graceful shutdown in %s\n", gracefulShutdown)
		time.Sleep(gracefulShutdown)
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
