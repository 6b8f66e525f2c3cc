package dashboard

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/business"
	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Inventory statistics",
	}
	cmd.AddCommand(showCmd(buildInfo), watchCmd(buildInfo))

	return cmd
}

func showCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the inventory statistics",
		Args:  cobra.NoArgs,
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteDashboard), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			stats, err := env.App.Stores.Dashboard.Fetch(ctx)
			if err != nil {
				return err
			}

			return render(env.Out, stats)
		})
}

func watchCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the inventory statistics until interrupted",
		Args:  cobra.NoArgs,
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteDashboard), true,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			return business.WatchDashboard(ctx, env.App.Stores.Dashboard, env.App.Config.Dashboard.RefreshInterval,
				func(stats inventory.DashboardStats) error {
					return render(env.Out, stats)
				})
		})
}

func render(out *output.Printer, stats inventory.DashboardStats) error {
	return out.Print(stats, func() output.Table {
		t := output.KeyValues(
			"total value", stats.TotalValue.String(),
			"accumulated depreciation", stats.AccumulatedDeprec.String(),
			"obsolete assets", strconv.Itoa(stats.ObsoleteAssets),
			"active units", strconv.Itoa(stats.ActiveUnits),
		)
		for _, s := range stats.ByState {
			t.Append("state "+string(s.State), strconv.Itoa(s.Count))
		}
		for _, s := range stats.BySite {
			t.Append("site "+s.Name, strconv.Itoa(s.AssetCount)+" assets, "+s.EstimatedValue.String())
		}

		return t
	})
}
