package auditlogs

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit-logs",
		Short: "Inspect the audit trail",
	}
	cmd.AddCommand(listCmd(buildInfo))

	return cmd
}

func listCmd(buildInfo string) *cobra.Command {
	var filter inventory.AuditFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&filter.Username, "user", "", "username contains")
	cmd.Flags().StringVar(&filter.Action, "action", "", "action, e.g. CREACION")
	cmd.Flags().StringVar(&filter.From, "from", "", "earliest date, e.g. 2024-05-01")
	cmd.Flags().StringVar(&filter.To, "to", "", "latest date")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteAuditLogs), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			logs, err := env.App.Stores.AuditLogs.Fetch(ctx, filter)
			if err != nil {
				return err
			}

			return env.Out.Print(logs, func() output.Table {
				t := output.Table{Header: []string{"ID", "TIME", "USER", "ACTION", "ENTITY", "ENTITY ID", "IP"}}
				for _, l := range logs {
					t.Append(
						strconv.FormatInt(l.ID, 10),
						l.Timestamp.Local().Format(time.DateTime),
						l.Username, l.Action, l.Entity, l.EntityID, l.IPAddress,
					)
				}
				return t
			})
		})
}
