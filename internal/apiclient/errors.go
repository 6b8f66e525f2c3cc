package apiclient

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ipsfa/inventario-client/internal/serviceerr"
)

const maxErrorBody = 1 << 20

// ResponseError is returned for any non-2xx response. The body is kept as sent by the server.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Is lets callers match a response against the coded service errors.
func (e *ResponseError) Is(target error) bool {
	var t *serviceerr.Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Err == serviceerr.CodeFromStatus(e.StatusCode)
}

// HasBody reports whether the server sent a non-blank body.
func (e *ResponseError) HasBody() bool {
	return len(bytes.TrimSpace(e.Body)) > 0
}

// StringField returns the top-level string field name of a JSON object body, if any.
func (e *ResponseError) StringField(name string) (string, bool) {
	if !gjson.ValidBytes(e.Body) {
		return "", false
	}

	v := gjson.GetBytes(e.Body, gjson.Escape(name))
	if v.Type != gjson.String {
		return "", false
	}

	return v.String(), true
}

// TransportError wraps failures that happened before a response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() []error {
	return []error{e.Err, serviceerr.ErrTransport}
}
