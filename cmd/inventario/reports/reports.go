package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Generate inventory reports",
	}
	cmd.AddCommand(downloadCmd(buildInfo))

	return cmd
}

func downloadCmd(buildInfo string) *cobra.Command {
	var kind, format, category, unit, from, to, dir string

	kinds := make([]string, len(inventory.ReportKinds))
	for i, k := range inventory.ReportKinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a report as PDF or Excel",
		Long: "Category and unit are given by id or name. The decommissioned and " +
			"transferred reports need --from and --to, the other reports accept them as filters.",
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVar(&kind, "kind", string(inventory.ReportGeneral), "report: "+strings.Join(kinds, "|"))
	cmd.Flags().StringVar(&format, "format", string(inventory.FormatPDF), "pdf or excel")
	cmd.Flags().StringVar(&category, "category", "", "category, for the category report")
	cmd.Flags().StringVar(&unit, "unit", "", "administrative unit")
	cmd.Flags().StringVar(&from, "from", "", "start date, e.g. 2024-01-01")
	cmd.Flags().StringVar(&to, "to", "", "end date")
	cmd.Flags().StringVar(&dir, "dir", ".", "target directory")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteReports), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			req := inventory.ReportRequest{
				Kind:   inventory.ReportKind(kind),
				Format: inventory.ReportFormat(format),
				From:   from,
				To:     to,
			}

			if category != "" {
				c, err := env.App.Catalog.Category(ctx, category)
				if err != nil {
					return err
				}
				req.CategoryID, req.CategoryName = c.ID, c.Name
			}
			if unit != "" {
				u, err := env.App.Catalog.Unit(ctx, unit)
				if err != nil {
					return err
				}
				req.UnitID = u.ID
			}

			path, err := env.App.Stores.Reports.Download(ctx, req, dir)
			if err != nil {
				return err
			}

			return env.Out.Message(fmt.Sprintf("Saved %s.", path))
		})
}
