// Package navigation holds the route table of the application and the guard
// that decides whether a navigation may proceed for the current session.
package navigation

import "strings"

const (
	RouteLogin         = "login"
	RoutePasswordReset = "password-reset"
	RouteDashboard     = "dashboard"
	RouteProfile       = "profile"

	RouteAssets          = "assets"
	RouteAssetCreate     = "asset-create"
	RouteAssetDetail     = "asset-detail"
	RouteAssetEdit       = "asset-edit"
	RouteAssetBulkUpload = "asset-bulk-upload"

	RouteProviders      = "providers"
	RouteProviderCreate = "provider-create"
	RouteProviderDetail = "provider-detail"
	RouteProviderEdit   = "provider-edit"

	RouteTransferCreate     = "transfer-create"
	RouteDecommissionCreate = "decommission-create"
	RouteReports            = "reports"

	RouteUsers      = "users"
	RouteUserCreate = "user-create"
	RouteUserEdit   = "user-edit"

	RouteRoles      = "roles"
	RouteRoleCreate = "role-create"
	RouteRoleEdit   = "role-edit"

	RouteUnits      = "units"
	RouteUnitCreate = "unit-create"
	RouteUnitEdit   = "unit-edit"

	RouteAuditLogs    = "audit-logs"
	RouteDepreciation = "depreciation"
)

// Route is a named location. Path uses :name segments for parameters.
type Route struct {
	Name   string
	Path   string
	Public bool
}

// RequiresAuth is true for every route that is not public.
func (r Route) RequiresAuth() bool {
	return !r.Public
}

// Expand substitutes params into the path of r. Missing params are left as is.
func (r Route) Expand(params map[string]string) string {
	segments := strings.Split(r.Path, "/")
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if v, ok := params[name]; ok {
				segments[i] = v
			}
		}
	}

	return strings.Join(segments, "/")
}

// Routes is the static route table.
var Routes = []Route{
	{Name: RouteLogin, Path: "/login", Public: true},
	{Name: RoutePasswordReset, Path: "/restablecer-password", Public: true},
	{Name: RouteDashboard, Path: "/"},
	{Name: RouteProfile, Path: "/perfil"},

	{Name: RouteAssets, Path: "/bienes"},
	{Name: RouteAssetCreate, Path: "/bienes/registrar"},
	{Name: RouteAssetDetail, Path: "/bienes/detalle/:id"},
	{Name: RouteAssetEdit, Path: "/bienes/editar/:id"},
	{Name: RouteAssetBulkUpload, Path: "/bienes/carga-masiva"},

	{Name: RouteProviders, Path: "/proveedores"},
	{Name: RouteProviderCreate, Path: "/proveedores/registrar"},
	{Name: RouteProviderEdit, Path: "/proveedores/editar/:id"},
	{Name: RouteProviderDetail, Path: "/proveedores/detalle/:id"},

	{Name: RouteTransferCreate, Path: "/traslados/nuevo"},
	{Name: RouteDecommissionCreate, Path: "/desincorporaciones/nueva"},
	{Name: RouteReports, Path: "/reportes"},

	{Name: RouteUsers, Path: "/usuarios"},
	{Name: RouteUserCreate, Path: "/usuarios/registrar"},
	{Name: RouteUserEdit, Path: "/usuarios/editar/:id"},

	{Name: RouteRoles, Path: "/roles"},
	{Name: RouteRoleCreate, Path: "/roles/registrar"},
	{Name: RouteRoleEdit, Path: "/roles/editar/:id"},

	{Name: RouteUnits, Path: "/unidades-administrativas"},
	{Name: RouteUnitCreate, Path: "/unidades-administrativas/registrar"},
	{Name: RouteUnitEdit, Path: "/unidades-administrativas/editar/:id"},

	{Name: RouteAuditLogs, Path: "/audit-logs"},
	{Name: RouteDepreciation, Path: "/depreciacion"},
}

// Lookup returns the route with the given name.
func Lookup(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}

	return Route{}, false
}
