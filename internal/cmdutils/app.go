package cmdutils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/business"
	"github.com/ipsfa/inventario-client/internal/config"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
)

const (
	FlagOutput = "output"
	FlagFile   = "file"
)

// Env is what a command works with once the session is restored and its route was entered.
type Env struct {
	App      *business.App
	Out      *output.Printer
	In       io.Reader
	Location navigation.Location
}

type AppFunc func(ctx context.Context, env *Env, args []string) error

// Target gives the route name or path a command enters for its arguments.
type Target func(args []string) string

func Route(name string) Target {
	return func([]string) string { return name }
}

// RouteWithID enters the path of the named route with :id set to the first argument.
func RouteWithID(name string) Target {
	return func(args []string) string {
		route, ok := navigation.Lookup(name)
		if !ok || len(args) == 0 {
			return name
		}

		return route.Expand(map[string]string{"id": args[0]})
	}
}

// AppCommand binds a command to target. Before fn runs, the configuration is
// loaded, the stored session is restored and the route is entered through
// the guard. Set service for long running commands.
func AppCommand(cmd *cobra.Command, buildInfo string, target Target, service bool, fn AppFunc) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(flagValue(cmd, FlagOutput))
		if err != nil {
			return err
		}

		cfg, err := LoadConfig(buildInfo)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		wrapper := RunAsJob
		if service {
			wrapper = RunAsService
		}

		return wrapper(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
			return runApp(ctx, cfg, target(args), &Env{
				Out: output.NewPrinter(cmd.OutOrStdout(), format),
				In:  cmd.InOrStdin(),
			}, args, fn)
		}, cfg)
	}

	return cmd
}

func runApp(ctx context.Context, cfg *config.Config, route string, env *Env, args []string, fn AppFunc) error {
	app, err := business.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		return err
	}

	loc, err := app.Enter(ctx, route)
	if err != nil {
		return err
	}

	env.App = app
	env.Location = loc

	return fn(ctx, env, args)
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}

	return ""
}

// ReadPayload reads a JSON or YAML document from the --file flag, or from
// stdin when the flag is "-" or unset, and returns it as JSON.
func ReadPayload(cmd *cobra.Command) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)

	switch path := flagValue(cmd, FlagFile); path {
	case "", "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	return PayloadJSON(data)
}

var ErrEmptyPayload = errors.New("empty payload")

// PayloadJSON accepts a JSON or YAML document and returns its JSON encoding.
func PayloadJSON(data []byte) (json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	if json.Valid(data) {
		return json.RawMessage(data), nil
	}

	converted, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("payload is neither JSON nor YAML: %w", err)
	}

	return json.RawMessage(bytes.TrimSpace(converted)), nil
}
