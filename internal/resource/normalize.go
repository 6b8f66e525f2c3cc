package resource

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
)

// Normalize decodes a list response. A bare array and an object with a
// "results" array are both accepted. Any other shape yields an empty list.
func Normalize[T any](raw []byte) ([]T, error) {
	if !gjson.ValidBytes(raw) {
		return []T{}, nil
	}

	r := gjson.ParseBytes(raw)

	var list gjson.Result
	switch {
	case r.IsArray():
		list = r
	case r.IsObject() && r.Get("results").IsArray():
		list = r.Get("results")
	default:
		return []T{}, nil
	}

	items := []T{}
	if err := json.Unmarshal([]byte(list.Raw), &items); err != nil {
		return nil, fmt.Errorf("decoding list items: %w", err)
	}

	return items, nil
}

// Query converts filters into query parameters. Filters may be url.Values
// or a struct whose fields carry mapstructure tags. Nil pointers and zero
// values are omitted.
func Query(filters any) (url.Values, error) {
	switch f := filters.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return cloneValues(f), nil
	}

	fields := map[string]any{}
	if err := mapstructure.Decode(filters, &fields); err != nil {
		return nil, fmt.Errorf("decoding filters: %w", err)
	}

	query := url.Values{}
	for name, value := range fields {
		v := reflect.ValueOf(value)
		if !v.IsValid() {
			continue
		}

		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				continue
			}

			v = v.Elem()
		}

		if v.IsZero() {
			continue
		}

		query.Set(name, fmt.Sprint(v.Interface()))
	}

	return query, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}

	return out
}
