package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeUnknown         Code = "unknown"
	CodeUnauthenticated Code = "unauthenticated"
	CodeLoginRequired   Code = "login_required"
	CodeSessionExpired  Code = "session_expired"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeValidation      Code = "validation_failed"
	CodeTransport       Code = "transport_failure"
	CodeServerError     Code = "server_error"
)

// Error is a coded error. Two errors are equal for errors.Is when their codes match.
type Error struct {
	Err         Code
	Description string
}

var (
	ErrUnknown         = &Error{Err: CodeUnknown, Description: "unknown error"}
	ErrUnauthenticated = &Error{Err: CodeUnauthenticated, Description: "no active session"}
	ErrLoginRequired   = &Error{Err: CodeLoginRequired, Description: "log in first with 'inventario login'"}
	ErrSessionExpired  = &Error{Err: CodeSessionExpired, Description: "stored session was rejected by the server"}
	ErrForbidden       = &Error{Err: CodeForbidden}
	ErrNotFound        = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict        = &Error{Err: CodeConflict, Description: "already exists"}
	ErrValidation      = &Error{Err: CodeValidation}
	ErrTransport       = &Error{Err: CodeTransport, Description: "could not reach the server"}
	ErrServerError     = &Error{Err: CodeServerError}
)

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Err == e.Err
}

// HTTPStatus returns the status code a server would use for the error code.
func (e *Error) HTTPStatus() int {
	switch e.Err {
	case CodeUnauthenticated, CodeLoginRequired, CodeSessionExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromStatus classifies a response status returned by the remote API.
func CodeFromStatus(status int) Code {
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthenticated
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status >= 400 && status < 500:
		return CodeValidation
	case status >= 500:
		return CodeServerError
	default:
		return CodeUnknown
	}
}
