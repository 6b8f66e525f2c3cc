package inventory

import (
	"encoding/json"
	"time"

	"github.com/oapi-codegen/runtime/types"
)

type AssetState string

const (
	AssetNew            AssetState = "NUEVO"
	AssetGood           AssetState = "BUENO"
	AssetFair           AssetState = "REGULAR"
	AssetPoor           AssetState = "MALO"
	AssetInRepair       AssetState = "EN_REPARACION"
	AssetObsolete       AssetState = "OBSOLETO"
	AssetDecommissioned AssetState = "DESINCORPORADO"
)

type Asset struct {
	ID                 int64       `json:"id"`
	PatrimonialCode    string      `json:"codigo_patrimonial,omitempty"`
	PreviousCode       string      `json:"codigo_anterior,omitempty"`
	Description        string      `json:"descripcion"`
	Brand              string      `json:"marca,omitempty"`
	Model              string      `json:"modelo,omitempty"`
	Serial             string      `json:"serial,omitempty"`
	Quantity           int         `json:"cantidad,omitempty"`
	AcquiredOn         *types.Date `json:"fecha_adquisicion,omitempty"`
	PurchaseOrder      string      `json:"n_orden_compra_factura,omitempty"`
	ProviderID         *int64      `json:"proveedor,omitempty"`
	ProviderName       string      `json:"proveedor_nombre,omitempty"`
	ProviderRIF        string      `json:"proveedor_rif,omitempty"`
	AcquisitionReason  string      `json:"motivo_adquisicion,omitempty"`
	UnitValueBs        Decimal     `json:"valor_unitario_bs,omitempty"`
	UnitValueUSD       Decimal     `json:"valor_unitario_usd,omitempty"`
	Location           string      `json:"ubicacion_fisica_especifica,omitempty"`
	ResponsibleName    string      `json:"responsable_asignado_nombre,omitempty"`
	ResponsibleTitle   string      `json:"responsable_asignado_cargo,omitempty"`
	UsefulLifeYears    *int        `json:"vida_util_estimada_anios,omitempty"`
	ResidualValue      Decimal     `json:"valor_residual,omitempty"`
	DepreciationMethod string      `json:"metodo_depreciacion,omitempty"`
	State              AssetState  `json:"estado_bien,omitempty"`
	Notes              string      `json:"observaciones,omitempty"`
	CreatedAt          *time.Time  `json:"fecha_creacion,omitempty"`
	UpdatedAt          *time.Time  `json:"fecha_actualizacion,omitempty"`
	UnitID             *int64      `json:"unidad_administrativa_actual,omitempty"`
	UnitName           string      `json:"unidad_administrativa_actual_nombre,omitempty"`
	CategoryID         *int64      `json:"categoria,omitempty"`
	CategoryName       string      `json:"categoria_nombre,omitempty"`
}

func (a Asset) Key() int64 { return a.ID }

type Provider struct {
	ID            int64      `json:"id"`
	Name          string     `json:"nombre_proveedor"`
	RIF           string     `json:"rif"`
	FiscalAddress string     `json:"direccion_fiscal,omitempty"`
	ContactName   string     `json:"contacto_principal_nombre,omitempty"`
	ContactEmail  string     `json:"contacto_principal_email,omitempty"`
	ContactPhone  string     `json:"contacto_principal_telefono,omitempty"`
	Active        bool       `json:"activo"`
	RegisteredAt  *time.Time `json:"fecha_registro,omitempty"`
	UpdatedAt     *time.Time `json:"ultima_actualizacion,omitempty"`
}

func (p Provider) Key() int64 { return p.ID }

type Unit struct {
	ID           int64      `json:"id"`
	Name         string     `json:"nombre"`
	Code         string     `json:"codigo"`
	Site         string     `json:"sede,omitempty"`
	Description  string     `json:"descripcion,omitempty"`
	Active       bool       `json:"activa"`
	RegisteredAt *time.Time `json:"fecha_registro,omitempty"`
	UpdatedAt    *time.Time `json:"ultima_actualizacion,omitempty"`
}

func (u Unit) Key() int64 { return u.ID }

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r Role) Key() int64 { return r.ID }

type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Password        string     `json:"password,omitempty"`
	PasswordConfirm string     `json:"password_confirm,omitempty"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	IsStaff         bool       `json:"is_staff"`
	IsActive        bool       `json:"is_active"`
	Groups          []Role     `json:"groups,omitempty"`
	GroupIDs        []int64    `json:"group_ids,omitempty"`
	DateJoined      *time.Time `json:"date_joined,omitempty"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

func (u User) Key() int64 { return u.ID }

type MovementType string

const (
	MovementIncorporation MovementType = "INCORPORACION"
	MovementTransfer      MovementType = "TRASLADO"
	MovementDecommission  MovementType = "DESINCORPORACION"
	MovementStateUpdate   MovementType = "ACTUALIZACION_ESTADO"
)

type Movement struct {
	ID                  int64        `json:"id,omitempty"`
	AssetID             int64        `json:"bien"`
	Type                MovementType `json:"tipo_movimiento"`
	Date                *time.Time   `json:"fecha_movimiento,omitempty"`
	OriginUnitID        *int64       `json:"unidad_origen,omitempty"`
	DestinationUnitID   *int64       `json:"unidad_destino,omitempty"`
	PreviousResponsible string       `json:"responsable_anterior_nombre,omitempty"`
	NewResponsible      string       `json:"responsable_nuevo_nombre,omitempty"`
	PreviousLocation    string       `json:"ubicacion_anterior_especifica,omitempty"`
	NewLocation         string       `json:"ubicacion_nueva_especifica,omitempty"`
	DecommissionReason  string       `json:"motivo_desincorporacion,omitempty"`
	ReferenceNumber     string       `json:"numero_oficio_referencia,omitempty"`
	RegisteredBy        *int64       `json:"usuario_registra,omitempty"`
	RegisteredAt        *time.Time   `json:"fecha_creacion_registro,omitempty"`
}

func (m Movement) Key() int64 { return m.ID }

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
}

func (c Category) Key() int64 { return c.ID }

type AuditLog struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Username  string          `json:"usuario_username"`
	Action    string          `json:"accion"`
	IPAddress string          `json:"ip_address,omitempty"`
	Entity    string          `json:"entidad_afectada,omitempty"`
	EntityID  string          `json:"id_entidad_afectada,omitempty"`
	Details   json.RawMessage `json:"detalles,omitempty"`
}

func (l AuditLog) Key() int64 { return l.ID }

type StateCount struct {
	State AssetState `json:"estado_bien"`
	Count int        `json:"count"`
}

type SiteInventory struct {
	Name           string  `json:"nombre"`
	AssetCount     int     `json:"cantidad_bienes"`
	EstimatedValue Decimal `json:"valor_estimado"`
}

type DashboardStats struct {
	TotalValue        Decimal         `json:"valor_patrimonial_total"`
	AccumulatedDeprec Decimal         `json:"depreciacion_acumulada"`
	ObsoleteAssets    int             `json:"bienes_obsoletos_count"`
	ActiveUnits       int             `json:"unidades_activas_count"`
	ByState           []StateCount    `json:"distribucion_por_estado"`
	BySite            []SiteInventory `json:"inventario_por_sede"`
}
