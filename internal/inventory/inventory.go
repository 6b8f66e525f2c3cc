// Package inventory binds the generic resource stores to the collections of
// the inventory API and adds the operations that are not plain CRUD.
package inventory

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/ipsfa/inventario-client/internal/resource"
)

// API is the subset of the API client used by this package.
type API interface {
	resource.Requester
	Patch(ctx context.Context, path string, body, out any) error
	Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error
	Download(ctx context.Context, path string, query url.Values, w io.Writer) (string, int64, error)
}

const (
	PathAssets     = "/bienes/"
	PathProviders  = "/proveedores/"
	PathUnits      = "/unidades-administrativas/"
	PathRoles      = "/groups/"
	PathUsers      = "/users/"
	PathMovements  = "/movimientos-bienes/"
	PathCategories = "/categorias/"
	PathAuditLogs  = "/audit-logs/"
)

type (
	ProviderStore = resource.Store[int64, Provider]
	UnitStore     = resource.Store[int64, Unit]
	RoleStore     = resource.Store[int64, Role]
	UserStore     = resource.Store[int64, User]
	CategoryStore = resource.Store[int64, Category]
)

func NewProviderStore(api resource.Requester) *ProviderStore {
	return resource.New[int64, Provider](api, PathProviders,
		resource.Labels{Singular: "provider", Plural: "providers"},
		resource.WithPolicy(resource.Refetch),
	)
}

func NewUnitStore(api resource.Requester) *UnitStore {
	return resource.New[int64, Unit](api, PathUnits,
		resource.Labels{Singular: "administrative unit", Plural: "administrative units"},
		resource.WithPolicy(resource.Refetch),
	)
}

func NewRoleStore(api resource.Requester) *RoleStore {
	return resource.New[int64, Role](api, PathRoles,
		resource.Labels{Singular: "role", Plural: "roles"},
		resource.WithPolicy(resource.Refetch),
	)
}

// NewUserStore adds a timestamp parameter to list requests so that caches never answer them.
func NewUserStore(api resource.Requester, now func() time.Time) *UserStore {
	if now == nil {
		now = time.Now
	}

	return resource.New[int64, User](api, PathUsers,
		resource.Labels{Singular: "user", Plural: "users"},
		resource.WithPolicy(resource.Refetch),
		resource.WithListQuery(func(q url.Values) url.Values {
			q.Set("_", strconv.FormatInt(now().UnixMilli(), 10))
			return q
		}),
	)
}

func NewCategoryStore(api resource.Requester) *CategoryStore {
	return resource.New[int64, Category](api, PathCategories,
		resource.Labels{Singular: "category", Plural: "categories"},
	)
}

// Stores groups one store per collection, sharing the same API client.
type Stores struct {
	Assets       *AssetStore
	Providers    *ProviderStore
	Units        *UnitStore
	Roles        *RoleStore
	Users        *UserStore
	Categories   *CategoryStore
	Movements    *MovementStore
	AuditLogs    *AuditLogStore
	Depreciation *DepreciationStore
	Dashboard    *DashboardStore
	Reports      *ReportStore
}

func NewStores(api API) *Stores {
	return &Stores{
		Assets:       NewAssetStore(api),
		Providers:    NewProviderStore(api),
		Units:        NewUnitStore(api),
		Roles:        NewRoleStore(api),
		Users:        NewUserStore(api, nil),
		Categories:   NewCategoryStore(api),
		Movements:    NewMovementStore(api),
		AuditLogs:    NewAuditLogStore(api),
		Depreciation: NewDepreciationStore(api),
		Dashboard:    NewDashboardStore(api),
		Reports:      NewReportStore(api),
	}
}
