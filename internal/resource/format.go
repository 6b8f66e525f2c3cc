package resource

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/ipsfa/inventario-client/internal/apiclient"
)

const formatPreamble = "could not process request: "

// FormatError renders a server error body as one human readable message.
// A JSON string or a plain text body is returned verbatim. A JSON object of
// field errors becomes "field: m1, m2; other: m3" in document order, with
// nested objects flattened to dotted names. Markup, empty bodies and any other
// JSON yield fallback.
func FormatError(body []byte, fallback string) string {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return plainText(body, fallback)
	}

	r := gjson.ParseBytes(body)
	switch {
	case r.Type == gjson.String:
		if r.String() == "" {
			return fallback
		}

		return r.String()
	case r.IsObject():
		var parts []string
		collectFields("", r, &parts)
		if len(parts) == 0 {
			return fallback
		}

		return formatPreamble + strings.Join(parts, "; ")
	default:
		return fallback
	}
}

// plainText returns a non-JSON body as the message unless it is empty or markup.
func plainText(body []byte, fallback string) string {
	if len(body) == 0 || body[0] == '<' || !utf8.Valid(body) {
		return fallback
	}

	return string(body)
}

func collectFields(prefix string, obj gjson.Result, parts *[]string) {
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case value.IsObject():
			collectFields(name, value, parts)
		case value.IsArray():
			var msgs []string
			for i, m := range value.Array() {
				if m.IsObject() {
					collectFields(fmt.Sprintf("%s[%d]", name, i), m, parts)
					continue
				}

				msgs = append(msgs, m.String())
			}

			if len(msgs) > 0 {
				*parts = append(*parts, name+": "+strings.Join(msgs, ", "))
			}
		default:
			*parts = append(*parts, name+": "+value.String())
		}

		return true
	})
}

// MutationMessage picks the message for a failed create, update or delete.
// Responses with a body are formatted, anything else uses fallback.
func MutationMessage(err error, fallback string) string {
	var respErr *apiclient.ResponseError
	if errors.As(err, &respErr) && respErr.HasBody() {
		return FormatError(respErr.Body, fallback)
	}

	return fallback
}

// Error carries the message stored in the state of a store together with the cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
