package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/apiclient"
)

type DepreciationPeriod struct {
	Month int `json:"mes"`
	Year  int `json:"anio"`
}

type DepreciationResult struct {
	Status     string   `json:"status"`
	Month      int      `json:"mes"`
	Year       int      `json:"anio"`
	Calculated int      `json:"bienes_calculados"`
	Skipped    int      `json:"bienes_omitidos"`
	Errors     []string `json:"errores,omitempty"`
}

// Message summarises the result for display.
func (r DepreciationResult) Message() string {
	return fmt.Sprintf("%s %d assets calculated, %d skipped for %02d/%d.", r.Status, r.Calculated, r.Skipped, r.Month, r.Year)
}

// DepreciationStore runs the monthly depreciation calculation.
type DepreciationStore struct {
	api API
	opState

	mu   sync.Mutex
	last *DepreciationResult
}

func NewDepreciationStore(api API) *DepreciationStore {
	return &DepreciationStore{api: api}
}

// Last returns the result of the last successful calculation.
func (s *DepreciationStore) Last() (DepreciationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return DepreciationResult{}, false
	}

	return *s.last, true
}

// Calculate asks the server to depreciate all eligible assets for the period.
// Periods already calculated are skipped by the server.
func (s *DepreciationStore) Calculate(ctx context.Context, month, year int) (DepreciationResult, error) {
	s.begin()
	defer s.end()

	period := DepreciationPeriod{Month: month, Year: year}
	verr := &ValidationError{}
	if month < 1 || month > 12 {
		verr.add("mes", "month must be between 1 and 12")
	}
	if year <= 2000 {
		verr.add("anio", "year must be after 2000")
	}
	if err := verr.orNil(); err != nil {
		return DepreciationResult{}, s.reject(err)
	}

	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()

	var result DepreciationResult
	if err := s.api.Post(ctx, "/depreciacion/calcular/", period, &result); err != nil {
		slogctx.Error(ctx, "Depreciation calculation failed", "month", month, "year", year, "error", err)
		return DepreciationResult{}, s.fail(depreciationMessage(err), err)
	}

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()

	return result, nil
}

func depreciationMessage(err error) string {
	return errorField(err, "unexpected error during the depreciation calculation")
}

// errorField returns the "error" field of the response body, or fallback.
func errorField(err error, fallback string) string {
	var respErr *apiclient.ResponseError
	if errors.As(err, &respErr) {
		if msg, ok := respErr.StringField("error"); ok && msg != "" {
			return msg
		}
	}

	return fallback
}
