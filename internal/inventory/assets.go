package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/tidwall/gjson"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/apiclient"
	"github.com/ipsfa/inventario-client/internal/resource"
)

// AssetStore is the asset collection plus bulk upload, code assignment and QR codes.
type AssetStore struct {
	*resource.Store[int64, Asset]

	api API
	ops opState
}

// NewAssetStore links the error state of the CRUD operations and of the asset
// specific ones, so that starting either kind clears the other.
func NewAssetStore(api API) *AssetStore {
	s := &AssetStore{api: api}
	s.Store = resource.New[int64, Asset](api, PathAssets,
		resource.Labels{Singular: "asset", Plural: "assets"},
		resource.WithPolicy(resource.MergeResult),
		resource.WithOnBegin(s.ops.clear),
	)
	s.ops.onBegin = s.Store.ClearErr

	return s
}

func (s *AssetStore) Loading() bool {
	return s.Store.Loading() || s.ops.Loading()
}

// Err returns the message of the last operation of either kind, or "" when it succeeded.
func (s *AssetStore) Err() string {
	if msg := s.ops.Err(); msg != "" {
		return msg
	}

	return s.Store.Err()
}

// UploadSummary is the answer of the server to a bulk upload.
type UploadSummary struct {
	Status     string `json:"status"`
	Processed  int    `json:"total_procesados"`
	Created    int    `json:"bienes_creados"`
	Successful int    `json:"success_count,omitempty"`
	Failed     int    `json:"error_count,omitempty"`
}

// RowError describes why one row of an uploaded file was rejected.
type RowError struct {
	Row     int    `json:"fila"`
	Message string `json:"errores"`
}

// UploadError is returned when the server rejects a bulk upload.
type UploadError struct {
	Message string
	Summary UploadSummary
	Rows    []RowError
	Err     error
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Upload sends a CSV or spreadsheet of assets and reloads the list on success.
// The server validates all rows in one transaction, so any rejected row
// rejects the whole file.
func (s *AssetStore) Upload(ctx context.Context, filename string, r io.Reader) (UploadSummary, error) {
	s.ops.begin()
	defer s.ops.end()

	var summary UploadSummary
	if err := s.api.Upload(ctx, PathAssets+"upload/", "file", filename, r, &summary); err != nil {
		slogctx.Error(ctx, "Bulk upload failed", "filename", filename, "error", err)
		uploadErr := newUploadError(err)
		_ = s.ops.fail(uploadErr.Message, err)

		return UploadSummary{}, uploadErr
	}

	if _, err := s.FetchAll(ctx, nil); err != nil {
		slogctx.Warn(ctx, "Reloading assets after bulk upload failed", "error", err)
	}

	return summary, nil
}

func newUploadError(err error) *UploadError {
	const fallback = "error during bulk upload"
	uploadErr := &UploadError{Message: fallback, Err: err}

	var respErr *apiclient.ResponseError
	if !errors.As(err, &respErr) || !respErr.HasBody() || !gjson.ValidBytes(respErr.Body) {
		return uploadErr
	}

	body := gjson.ParseBytes(respErr.Body)
	if msg := body.Get("error").String(); msg != "" {
		uploadErr.Message = msg
		return uploadErr
	}

	uploadErr.Summary.Status = body.Get("status").String()
	uploadErr.Summary.Successful = int(body.Get("success_count").Int())
	uploadErr.Summary.Failed = int(body.Get("error_count").Int())
	body.Get("errors").ForEach(func(_, row gjson.Result) bool {
		uploadErr.Rows = append(uploadErr.Rows, RowError{
			Row:     int(row.Get("fila").Int()),
			Message: resource.FormatError([]byte(row.Get("errores").Raw), "invalid row"),
		})
		return true
	})

	if uploadErr.Summary.Status != "" {
		uploadErr.Message = fmt.Sprintf("%s: %d rows rejected", uploadErr.Summary.Status, len(uploadErr.Rows))
	}

	return uploadErr
}

// NextCode asks for the next free patrimonial number of an administrative unit.
func (s *AssetStore) NextCode(ctx context.Context, unitCode string) (string, error) {
	s.ops.begin()
	defer s.ops.end()

	var raw json.RawMessage
	if err := s.api.Get(ctx, PathAssets+"siguiente-codigo/"+url.PathEscape(unitCode)+"/", nil, &raw); err != nil {
		slogctx.Error(ctx, "Failed to get next patrimonial code", "unit_code", unitCode, "error", err)
		return "", s.ops.fail("error getting the next patrimonial code", err)
	}

	next := gjson.GetBytes(raw, "siguiente_numero")
	if !next.Exists() {
		return "", s.ops.fail("error getting the next patrimonial code", errors.New("response has no siguiente_numero"))
	}

	return next.String(), nil
}

// QRCode writes the PNG QR code of an asset to w.
func (s *AssetStore) QRCode(ctx context.Context, id int64, w io.Writer) (int64, error) {
	s.ops.begin()
	defer s.ops.end()

	_, n, err := s.api.Download(ctx, fmt.Sprintf("%s%d/qr_code/", PathAssets, id), nil, w)
	if err != nil {
		slogctx.Error(ctx, "Failed to download QR code", "id", id, "error", err)
		return n, s.ops.fail(fmt.Sprintf("error generating the QR code of asset %d", id), err)
	}

	return n, nil
}
