package inventory

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/ipsfa/inventario-client/internal/resource"
	"github.com/ipsfa/inventario-client/internal/serviceerr"
)

// FieldError is a client side validation failure of one request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the fields of a request that failed client side checks.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}

	return "could not process request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return serviceerr.ErrValidation
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

// MovementStore registers transfers and decommissions and lists the history of an asset.
type MovementStore struct {
	*resource.Store[int64, Movement]
}

func NewMovementStore(api resource.Requester) *MovementStore {
	return &MovementStore{
		Store: resource.New[int64, Movement](api, PathMovements,
			resource.Labels{Singular: "movement", Plural: "movements"},
			resource.WithPolicy(resource.MergeResult),
		),
	}
}

// Transfer moves an asset to another unit, location or responsible.
func (s *MovementStore) Transfer(ctx context.Context, m Movement) (Movement, error) {
	m.Type = MovementTransfer
	if err := ValidateTransfer(m); err != nil {
		return Movement{}, s.Reject(err)
	}

	return s.Create(ctx, m)
}

// Decommission takes an asset out of the inventory.
func (s *MovementStore) Decommission(ctx context.Context, m Movement) (Movement, error) {
	m.Type = MovementDecommission
	if err := ValidateDecommission(m); err != nil {
		return Movement{}, s.Reject(err)
	}

	return s.Create(ctx, m)
}

// ByAsset lists the movements of one asset.
func (s *MovementStore) ByAsset(ctx context.Context, assetID int64) ([]Movement, error) {
	return s.FetchAll(ctx, url.Values{"bien": {strconv.FormatInt(assetID, 10)}})
}

// ValidateTransfer applies the checks the server makes on transfers.
func ValidateTransfer(m Movement) error {
	verr := &ValidationError{}
	if m.AssetID == 0 {
		verr.add("bien", "the asset is required")
	}
	if m.OriginUnitID == nil {
		verr.add("unidad_origen", "the origin unit is required for transfers")
	}
	if m.DestinationUnitID == nil {
		verr.add("unidad_destino", "the destination unit is required for transfers")
	}
	if m.NewLocation == "" {
		verr.add("ubicacion_nueva_especifica", "the new physical location is required for transfers")
	}

	if m.OriginUnitID != nil && m.DestinationUnitID != nil && *m.OriginUnitID == *m.DestinationUnitID &&
		m.PreviousResponsible == m.NewResponsible && m.PreviousLocation == m.NewLocation {
		verr.add("detail", "a transfer within the same unit must change the responsible, the location, or both")
	}

	return verr.orNil()
}

// ValidateDecommission applies the checks the server makes on decommissions.
func ValidateDecommission(m Movement) error {
	verr := &ValidationError{}
	if m.AssetID == 0 {
		verr.add("bien", "the asset is required")
	}
	if m.DecommissionReason == "" {
		verr.add("motivo_desincorporacion", "the decommission reason is required")
	}
	if m.ReferenceNumber == "" {
		verr.add("numero_oficio_referencia", "the reference document number is required for decommissions")
	}

	return verr.orNil()
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
