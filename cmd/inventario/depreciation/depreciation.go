package depreciation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depreciation",
		Short: "Run the monthly depreciation",
	}
	cmd.AddCommand(calculateCmd(buildInfo))

	return cmd
}

func calculateCmd(buildInfo string) *cobra.Command {
	var month, year int

	now := time.Now()
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the depreciation of all assets for one month",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month, 1 to 12")
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteDepreciation), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			res, err := env.App.Stores.Depreciation.Calculate(ctx, month, year)
			if err != nil {
				return err
			}

			return env.Out.Print(res, func() output.Table {
				return output.KeyValues(
					"result", res.Message(),
					"calculated", strconv.Itoa(res.Calculated),
					"skipped", strconv.Itoa(res.Skipped),
					"errors", strings.Join(res.Errors, "; "),
				)
			})
		})
}
