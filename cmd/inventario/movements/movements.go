package movements

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Transfer and decommission assets",
	}
	cmd.AddCommand(transferCmd(buildInfo), decommissionCmd(buildInfo), listCmd(buildInfo))

	return cmd
}

var columns = []string{"ID", "ASSET", "TYPE", "DATE", "FROM", "TO", "LOCATION", "REFERENCE"}

func row(m inventory.Movement) []string {
	date := ""
	if m.Date != nil {
		date = m.Date.Local().Format("2006-01-02 15:04")
	}

	return []string{
		strconv.FormatInt(m.ID, 10),
		strconv.FormatInt(m.AssetID, 10),
		string(m.Type),
		date,
		unitID(m.OriginUnitID),
		unitID(m.DestinationUnitID),
		m.NewLocation,
		m.ReferenceNumber,
	}
}

func unitID(id *int64) string {
	if id == nil {
		return ""
	}

	return strconv.FormatInt(*id, 10)
}

func table(movements ...inventory.Movement) output.Table {
	t := output.Table{Header: columns}
	for _, m := range movements {
		t.Append(row(m)...)
	}

	return t
}

// printValidation lists the field errors before returning err.
func printValidation(out *output.Printer, err error) error {
	var verr *inventory.ValidationError
	if errors.As(err, &verr) {
		_ = out.Print(verr.Fields, func() output.Table {
			t := output.Table{Header: []string{"FIELD", "ERROR"}}
			for _, f := range verr.Fields {
				t.Append(f.Field, f.Message)
			}
			return t
		})
	}

	return err
}

func transferCmd(buildInfo string) *cobra.Command {
	var (
		asset                                      int64
		from, to, location, responsible, reference string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move an asset to another unit, location or responsible",
		Long: "The origin unit, the previous location and the previous responsible " +
			"default to the current values of the asset. Units are given by code, id or name.",
		Args: cobra.NoArgs,
	}
	cmd.Flags().Int64Var(&asset, "asset", 0, "asset id")
	cmd.Flags().StringVar(&from, "from", "", "origin unit, defaults to the current unit of the asset")
	cmd.Flags().StringVar(&to, "to", "", "destination unit")
	cmd.Flags().StringVar(&location, "location", "", "new physical location")
	cmd.Flags().StringVar(&responsible, "responsible", "", "new responsible, defaults to the current one")
	cmd.Flags().StringVar(&reference, "reference", "", "reference document number")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteTransferCreate), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			m := inventory.Movement{
				AssetID:         asset,
				NewLocation:     location,
				NewResponsible:  responsible,
				ReferenceNumber: reference,
			}

			if asset > 0 {
				current, err := env.App.Stores.Assets.FetchOne(ctx, asset)
				if err != nil {
					return err
				}
				m.OriginUnitID = current.UnitID
				m.PreviousLocation = current.Location
				m.PreviousResponsible = current.ResponsibleName
				if m.NewResponsible == "" {
					m.NewResponsible = current.ResponsibleName
				}
			}

			if from != "" {
				u, err := env.App.Catalog.Unit(ctx, from)
				if err != nil {
					return err
				}
				m.OriginUnitID = &u.ID
			}
			if to != "" {
				u, err := env.App.Catalog.Unit(ctx, to)
				if err != nil {
					return err
				}
				m.DestinationUnitID = &u.ID
			}

			created, err := env.App.Stores.Movements.Transfer(ctx, m)
			if err != nil {
				return printValidation(env.Out, err)
			}

			return env.Out.Print(created, func() output.Table { return table(created) })
		})
}

func decommissionCmd(buildInfo string) *cobra.Command {
	var (
		asset             int64
		reason, reference string
	)

	cmd := &cobra.Command{
		Use:   "decommission",
		Short: "Take an asset out of the inventory",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Int64Var(&asset, "asset", 0, "asset id")
	cmd.Flags().StringVar(&reason, "reason", "", "decommission reason")
	cmd.Flags().StringVar(&reference, "reference", "", "reference document number")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteDecommissionCreate), false,
		func(ctx context.Context, env *cmdutils.Env, _ []string) error {
			created, err := env.App.Stores.Movements.Decommission(ctx, inventory.Movement{
				AssetID:            asset,
				DecommissionReason: reason,
				ReferenceNumber:    reference,
			})
			if err != nil {
				return printValidation(env.Out, err)
			}

			return env.Out.Print(created, func() output.Table { return table(created) })
		})
}

func listCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <asset-id>",
		Short: "List the movements of an asset",
		Args:  cobra.ExactArgs(1),
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.RouteWithID(navigation.RouteAssetDetail), false,
		func(ctx context.Context, env *cmdutils.Env, args []string) error {
			id, err := cmdutils.ParseID(args[0])
			if err != nil {
				return err
			}

			list, err := env.App.Stores.Movements.ByAsset(ctx, id)
			if err != nil {
				return fmt.Errorf("listing movements of asset %d: %w", id, err)
			}

			return env.Out.Print(list, func() output.Table { return table(list...) })
		})
}
