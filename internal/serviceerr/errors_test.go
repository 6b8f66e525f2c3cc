package serviceerr_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ipsfa/inventario-client/internal/serviceerr"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name        string
		err         *serviceerr.Error
		expectedMsg string
	}{
		{
			name:        "Error with description",
			err:         &serviceerr.Error{Err: serviceerr.CodeNotFound, Description: "asset 7"},
			expectedMsg: "not_found: asset 7",
		},
		{
			name:        "Error without description",
			err:         &serviceerr.Error{Err: serviceerr.CodeValidation},
			expectedMsg: "validation_failed",
		},
		{
			name:        "Predefined error - ErrTransport",
			err:         serviceerr.ErrTransport,
			expectedMsg: "transport_failure: could not reach the server",
		},
		{
			name:        "Predefined error - ErrForbidden",
			err:         serviceerr.ErrForbidden,
			expectedMsg: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("loading session: %w", &serviceerr.Error{Err: serviceerr.CodeSessionExpired, Description: "token rejected"})

	assert.ErrorIs(t, wrapped, serviceerr.ErrSessionExpired)
	assert.NotErrorIs(t, wrapped, serviceerr.ErrUnauthenticated)
	assert.NotErrorIs(t, wrapped, fmt.Errorf("session_expired"))
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name               string
		code               serviceerr.Code
		expectedHTTPStatus int
	}{
		{name: "CodeUnauthenticated returns Unauthorized", code: serviceerr.CodeUnauthenticated, expectedHTTPStatus: http.StatusUnauthorized},
		{name: "CodeLoginRequired returns Unauthorized", code: serviceerr.CodeLoginRequired, expectedHTTPStatus: http.StatusUnauthorized},
		{name: "CodeSessionExpired returns Unauthorized", code: serviceerr.CodeSessionExpired, expectedHTTPStatus: http.StatusUnauthorized},
		{name: "CodeForbidden returns Forbidden", code: serviceerr.CodeForbidden, expectedHTTPStatus: http.StatusForbidden},
		{name: "CodeNotFound returns NotFound", code: serviceerr.CodeNotFound, expectedHTTPStatus: http.StatusNotFound},
		{name: "CodeConflict returns Conflict", code: serviceerr.CodeConflict, expectedHTTPStatus: http.StatusConflict},
		{name: "CodeValidation returns BadRequest", code: serviceerr.CodeValidation, expectedHTTPStatus: http.StatusBadRequest},
		{name: "CodeTransport returns BadGateway", code: serviceerr.CodeTransport, expectedHTTPStatus: http.StatusBadGateway},
		{name: "CodeServerError returns InternalServerError", code: serviceerr.CodeServerError, expectedHTTPStatus: http.StatusInternalServerError},
		{name: "Unknown code returns InternalServerError", code: serviceerr.Code("unknown_code"), expectedHTTPStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := serviceerr.Error{Err: tt.code}
			assert.Equal(t, tt.expectedHTTPStatus, err.HTTPStatus())
		})
	}
}

func TestCodeFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   serviceerr.Code
	}{
		{status: http.StatusUnauthorized, want: serviceerr.CodeUnauthenticated},
		{status: http.StatusForbidden, want: serviceerr.CodeForbidden},
		{status: http.StatusNotFound, want: serviceerr.CodeNotFound},
		{status: http.StatusConflict, want: serviceerr.CodeConflict},
		{status: http.StatusBadRequest, want: serviceerr.CodeValidation},
		{status: http.StatusUnprocessableEntity, want: serviceerr.CodeValidation},
		{status: http.StatusInternalServerError, want: serviceerr.CodeServerError},
		{status: http.StatusBadGateway, want: serviceerr.CodeServerError},
		{status: http.StatusFound, want: serviceerr.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, serviceerr.CodeFromStatus(tt.status))
		})
	}
}
