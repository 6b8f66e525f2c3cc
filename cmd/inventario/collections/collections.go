// Package collections holds the commands of the plain CRUD collections.
package collections

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ipsfa/inventario-client/internal/business"
	"github.com/ipsfa/inventario-client/internal/cmdutils"
	"github.com/ipsfa/inventario-client/internal/inventory"
	"github.com/ipsfa/inventario-client/internal/navigation"
	"github.com/ipsfa/inventario-client/internal/resource"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func group(use, short string, cmds ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}
	cmd.AddCommand(cmds...)

	return cmd
}

func ProvidersCmd(buildInfo string) *cobra.Command {
	res := cmdutils.Resource[inventory.Provider]{
		Store:       func(app *business.App) *resource.Store[int64, inventory.Provider] { return app.Stores.Providers },
		ListRoute:   navigation.RouteProviders,
		CreateRoute: navigation.RouteProviderCreate,
		EditRoute:   navigation.RouteProviderEdit,
		DetailRoute: navigation.RouteProviderDetail,
		Filters: []cmdutils.Filter{
			{Flag: "search", Param: "search", Usage: "name or RIF"},
			{Flag: "active", Param: "activo", Usage: "true or false"},
		},
		Columns: []string{"ID", "NAME", "RIF", "CONTACT", "ACTIVE"},
		Row: func(p inventory.Provider) []string {
			return []string{id(p.ID), p.Name, p.RIF, p.ContactName, yesNo(p.Active)}
		},
		BuildInfo: buildInfo,
	}

	return group("providers", "Manage providers", res.Commands()...)
}

func UnitsCmd(buildInfo string) *cobra.Command {
	res := cmdutils.Resource[inventory.Unit]{
		Store:       func(app *business.App) *resource.Store[int64, inventory.Unit] { return app.Stores.Units },
		ListRoute:   navigation.RouteUnits,
		CreateRoute: navigation.RouteUnitCreate,
		EditRoute:   navigation.RouteUnitEdit,
		Filters: []cmdutils.Filter{
			{Flag: "site", Param: "sede", Usage: "site name"},
			{Flag: "active", Param: "activa", Usage: "true or false"},
		},
		Columns: []string{"ID", "CODE", "NAME", "SITE", "ACTIVE"},
		Row: func(u inventory.Unit) []string {
			return []string{id(u.ID), u.Code, u.Name, u.Site, yesNo(u.Active)}
		},
		BuildInfo: buildInfo,
	}

	return group("units", "Manage administrative units", res.Commands()...)
}

func RolesCmd(buildInfo string) *cobra.Command {
	res := cmdutils.Resource[inventory.Role]{
		Store:       func(app *business.App) *resource.Store[int64, inventory.Role] { return app.Stores.Roles },
		ListRoute:   navigation.RouteRoles,
		CreateRoute: navigation.RouteRoleCreate,
		EditRoute:   navigation.RouteRoleEdit,
		Columns:     []string{"ID", "NAME"},
		Row: func(r inventory.Role) []string {
			return []string{id(r.ID), r.Name}
		},
		BuildInfo: buildInfo,
	}

	return group("roles", "Manage roles", res.Commands()...)
}

func UsersCmd(buildInfo string) *cobra.Command {
	res := cmdutils.Resource[inventory.User]{
		Store:       func(app *business.App) *resource.Store[int64, inventory.User] { return app.Stores.Users },
		ListRoute:   navigation.RouteUsers,
		CreateRoute: navigation.RouteUserCreate,
		EditRoute:   navigation.RouteUserEdit,
		Filters: []cmdutils.Filter{
			{Flag: "search", Param: "search", Usage: "username, name or email"},
		},
		Columns: []string{"ID", "USERNAME", "NAME", "EMAIL", "ROLES", "ACTIVE"},
		Row: func(u inventory.User) []string {
			roles := make([]string, len(u.Groups))
			for i, g := range u.Groups {
				roles[i] = g.Name
			}

			return []string{
				id(u.ID), u.Username,
				strings.TrimSpace(u.FirstName + " " + u.LastName),
				u.Email, strings.Join(roles, ","), yesNo(u.IsActive),
			}
		},
		BuildInfo: buildInfo,
	}

	return group("users", "Manage user accounts", res.Commands()...)
}

// CategoriesCmd only lists; categories are maintained on the server.
func CategoriesCmd(buildInfo string) *cobra.Command {
	res := cmdutils.Resource[inventory.Category]{
		Store:     func(app *business.App) *resource.Store[int64, inventory.Category] { return app.Stores.Categories },
		ListRoute: navigation.RouteAssets,
		Columns:   []string{"ID", "NAME", "DESCRIPTION"},
		Row: func(c inventory.Category) []string {
			return []string{id(c.ID), c.Name, c.Description}
		},
		BuildInfo: buildInfo,
	}

	return group("categories", "List asset categories", res.List())
}
