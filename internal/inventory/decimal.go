package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decimal is a monetary amount kept as its decimal text. The server sends
// amounts either as strings or as JSON numbers; both decode to the same text.
type Decimal string

func (d Decimal) String() string {
	return string(d)
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}

	return json.Marshal(string(d))
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*d = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Decimal(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding decimal %s: %w", data, err)
		}
		*d = Decimal(n.String())
	}

	return nil
}
