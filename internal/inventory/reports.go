package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	slogctx "github.com/veqryn/slog-context"
)

type ReportKind string

const (
	ReportGeneral        ReportKind = "general"
	ReportByCategory     ReportKind = "category"
	ReportByUnit         ReportKind = "unit"
	ReportDecommissioned ReportKind = "decommissioned"
	ReportTransferred    ReportKind = "transferred"
)

var ReportKinds = []ReportKind{ReportGeneral, ReportByCategory, ReportByUnit, ReportDecommissioned, ReportTransferred}

type ReportFormat string

const (
	FormatPDF   ReportFormat = "pdf"
	FormatExcel ReportFormat = "excel"
)

// Extension returns the file extension written for the format.
func (f ReportFormat) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}

	return "pdf"
}

var ErrUnknownReport = errors.New("unknown report")

// ReportRequest selects one report. CategoryID is required for category
// reports, UnitID for unit reports, and From and To for the decommissioned
// and transferred reports, where UnitID optionally narrows the result.
// On the other reports From and To are optional date filters.
type ReportRequest struct {
	Kind         ReportKind
	Format       ReportFormat
	CategoryID   int64
	CategoryName string
	UnitID       int64
	From         string
	To           string
}

// Endpoint returns the path and query of the report.
func (r ReportRequest) Endpoint() (string, url.Values, error) {
	if r.Format != FormatPDF && r.Format != FormatExcel {
		return "", nil, fmt.Errorf("%w: format %q", ErrUnknownReport, r.Format)
	}

	query := url.Values{}
	verr := &ValidationError{}

	var path string
	switch r.Kind {
	case ReportGeneral:
		path = "/reportes/inventario-general/"
		if r.Format == FormatExcel {
			path += "excel/"
		}
	case ReportByCategory:
		path = "/reportes/bienes-por-categoria/" + string(r.Format) + "/"
		if r.CategoryID == 0 {
			verr.add("categoria_id", "a category is required")
		}
		query.Set("categoria_id", strconv.FormatInt(r.CategoryID, 10))
	case ReportByUnit:
		path = "/reportes/bienes-por-unidad/" + string(r.Format) + "/"
		if r.UnitID == 0 {
			verr.add("unidad_id", "an administrative unit is required")
		}
		query.Set("unidad_id", strconv.FormatInt(r.UnitID, 10))
	case ReportDecommissioned, ReportTransferred:
		path = "/reportes/bienes-desincorporados/"
		if r.Kind == ReportTransferred {
			path = "/reportes/bienes-trasladados/"
		}
		path += string(r.Format) + "/"

		if r.From == "" {
			verr.add("fecha_desde", "the start date is required")
		}
		if r.To == "" {
			verr.add("fecha_hasta", "the end date is required")
		}
		query.Set("fecha_desde", r.From)
		query.Set("fecha_hasta", r.To)
		if r.UnitID != 0 {
			query.Set("unidad_id", strconv.FormatInt(r.UnitID, 10))
		}
	default:
		return "", nil, fmt.Errorf("%w: kind %q", ErrUnknownReport, r.Kind)
	}

	// Dates are optional filters on the inventory reports.
	if r.Kind == ReportGeneral || r.Kind == ReportByCategory || r.Kind == ReportByUnit {
		if r.From != "" {
			query.Set("fecha_desde", r.From)
		}
		if r.To != "" {
			query.Set("fecha_hasta", r.To)
		}
	}

	if err := verr.orNil(); err != nil {
		return "", nil, err
	}

	return path, query, nil
}

// Filename returns the name the report is saved under.
func (r ReportRequest) Filename() string {
	var base string
	switch r.Kind {
	case ReportGeneral:
		base = "reporte_inventario_general"
	case ReportByCategory:
		base = "reporte_bienes_por_categoria"
		if name := sanitizeFilename(r.CategoryName); name != "" {
			base = "reporte_bienes_categoria_" + name
		}
	case ReportByUnit:
		base = "reporte_bienes_unidad_" + strconv.FormatInt(r.UnitID, 10)
	case ReportDecommissioned:
		base = "reporte_bienes_desincorporados"
	case ReportTransferred:
		base = "reporte_bienes_trasladados"
	default:
		base = "reporte"
	}

	return base + "." + r.Format.Extension()
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}

// ReportStore downloads generated reports to disk.
type ReportStore struct {
	api API
	opState
}

func NewReportStore(api API) *ReportStore {
	return &ReportStore{api: api}
}

// Download writes the report into dir and returns the path of the file.
// Nothing is left in dir when the download fails.
func (s *ReportStore) Download(ctx context.Context, req ReportRequest, dir string) (string, error) {
	s.begin()
	defer s.end()

	path, query, err := req.Endpoint()
	if err != nil {
		return "", s.reject(err)
	}

	target := filepath.Join(dir, req.Filename())
	if err := s.download(ctx, path, query, target); err != nil {
		slogctx.Error(ctx, "Report download failed", "kind", req.Kind, "format", req.Format, "error", err)
		return "", s.fail(fmt.Sprintf("error generating the %s report", req.Kind), err)
	}

	slogctx.Info(ctx, "Report downloaded", "kind", req.Kind, "path", target)

	return target, nil
}

func (s *ReportStore) download(ctx context.Context, path string, query url.Values, target string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, _, err = s.api.Download(ctx, path, query, tmp); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	return nil
}
