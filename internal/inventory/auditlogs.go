package inventory

import (
	"context"

	"github.com/ipsfa/inventario-client/internal/resource"
)

// AuditFilter narrows the audit log. Empty fields are not sent. From and To
// are dates or timestamps as accepted by the server, e.g. "2024-05-01".
type AuditFilter struct {
	Username string `mapstructure:"usuario__username__icontains"`
	Action   string `mapstructure:"accion"`
	From     string `mapstructure:"timestamp__gte"`
	To       string `mapstructure:"timestamp__lte"`
}

// AuditLogStore is the read-only audit trail.
type AuditLogStore struct {
	*resource.Store[int64, AuditLog]
}

func NewAuditLogStore(api resource.Requester) *AuditLogStore {
	return &AuditLogStore{
		Store: resource.New[int64, AuditLog](api, PathAuditLogs,
			resource.Labels{Singular: "audit log", Plural: "audit logs"},
		),
	}
}

// Fetch lists the audit log entries matching filter.
func (s *AuditLogStore) Fetch(ctx context.Context, filter AuditFilter) ([]AuditLog, error) {
	query, err := resource.Query(filter)
	if err != nil {
		return nil, err
	}

	return s.FetchAll(ctx, query)
}
