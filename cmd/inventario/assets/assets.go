package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/business"
	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/output"
	"github.com/ipsfa/inventario-client/internal/resource"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the asset register",
	}

	res := cmdutils.Resource[inventory.Asset]{
		Store:       func(app *business.App) *resource.Store[int64, inventory.Asset] { return app.Stores.Assets.Store },
		ListRoute:   navigation.RouteAssets,
		CreateRoute: navigation.RouteAssetCreate,
		EditRoute:   navigation.RouteAssetEdit,
		DetailRoute: navigation.RouteAssetDetail,
		Filters: []cmdutils.Filter{
			{Flag: "search", Param: "search", Usage: "free text search"},
			{Flag: "state", Param: "estado_bien", Usage: "asset state, e.g. BUENO"},
			{Flag: "category", Param: "categoria", Usage: "category id"},
			{Flag: "unit", Param: "unidad_administrativa_actual", Usage: "administrative unit id"},
		},
		Columns:   []string{"ID", "CODE", "DESCRIPTION", "STATE", "UNIT", "CATEGORY"},
		Row:       row,
		BuildInfo: buildInfo,
	}

	cmd.AddCommand(res.Commands()...)
	cmd.AddCommand(uploadCmd(buildInfo), nextCodeCmd(buildInfo), qrCmd(buildInfo))

	return cmd
}

func row(a inventory.Asset) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.PatrimonialCode,
		a.Description,
		string(a.State),
		a.UnitName,
		a.CategoryName,
	}
}

func uploadCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Register assets in bulk from a CSV or spreadsheet",
		Args:  cobra.ExactArgs(1),
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteAssetBulkUpload), false,
		func(ctx context.Context, env *cmdutils.Env, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening upload file: %w", err)
			}
			defer f.Close()

			summary, err := env.App.Stores.Assets.Upload(ctx, filepath.Base(args[0]), f)
			if err != nil {
				var uploadErr *inventory.UploadError
				if errors.As(err, &uploadErr) && len(uploadErr.Rows) > 0 {
					_ = env.Out.Print(uploadErr.Rows, func() output.Table {
						t := output.Table{Header: []string{"ROW", "ERRORS"}}
						for _, r := range uploadErr.Rows {
							t.Append(strconv.Itoa(r.Row), r.Message)
						}
						return t
					})
				}

				return err
			}

			return env.Out.Print(summary, func() output.Table {
				return output.KeyValues(
					"status", summary.Status,
					"processed", strconv.Itoa(summary.Processed),
					"created", strconv.Itoa(summary.Created),
				)
			})
		})
}

func nextCodeCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next-code <unit>",
		Short: "Show the next free patrimonial number of an administrative unit",
		Long:  "The unit is given by code, id or name.",
		Args:  cobra.ExactArgs(1),
	}

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.Route(navigation.RouteAssetCreate), false,
		func(ctx context.Context, env *cmdutils.Env, args []string) error {
			unit, err := env.App.Catalog.Unit(ctx, args[0])
			if err != nil {
				return err
			}

			next, err := env.App.Stores.Assets.NextCode(ctx, unit.Code)
			if err != nil {
				return err
			}

			return env.Out.Print(map[string]string{"unit": unit.Code, "next": next}, func() output.Table {
				return output.KeyValues("unit", unit.Code, "next code", next)
			})
		})
}

func qrCmd(buildInfo string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "qr <id>",
		Short: "Save the QR code of an asset as PNG",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "target directory")

	return cmdutils.AppCommand(cmd, buildInfo, cmdutils.RouteWithID(navigation.RouteAssetDetail), false,
		func(ctx context.Context, env *cmdutils.Env, args []string) error {
			id, err := cmdutils.ParseID(args[0])
			if err != nil {
				return err
			}

			path, err := saveQRCode(ctx, env.App.Stores.Assets, id, dir)
			if err != nil {
				return err
			}

			return env.Out.Message(fmt.Sprintf("Saved %s.", path))
		})
}

// saveQRCode writes to a temporary file in dir and renames it once complete.
func saveQRCode(ctx context.Context, store *inventory.AssetStore, id int64, dir string) (_ string, err error) {
	tmp, err := os.CreateTemp(dir, ".qr-*")
	if err != nil {
		return "", fmt.Errorf("creating qr code file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = store.QRCode(ctx, id, tmp); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("closing qr code file: %w", err)
	}

	target := filepath.Join(dir, fmt.Sprintf("qr_bien_%d.png", id))
	if err = os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("saving qr code: %w", err)
	}

	return target, nil
}
