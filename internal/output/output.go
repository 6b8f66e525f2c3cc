// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

var ErrUnknownFormat = fmt.Errorf("unknown output format, expected one of %v", Formats)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Table is the tabular view of a result.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Printer writes results to w in one format.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

func (p *Printer) Format() Format {
	return p.format
}

// Print writes v. In table format the table built by tbl is written instead.
// YAML is converted from the JSON encoding so both formats use the same field names.
func (p *Printer) Print(v any, tbl func() Table) error {
	switch p.format {
	case FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}

		_, err = fmt.Fprintln(p.w, string(b))

		return err
	case FormatYAML:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}

		y, err := yaml.JSONToYAML(b)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		_, err = p.w.Write(y)

		return err
	default:
		return p.table(tbl())
	}
}

// Message writes a plain line. Structured formats wrap it as {"message": msg}.
func (p *Printer) Message(msg string) error {
	if p.format != FormatTable {
		return p.Print(map[string]string{"message": msg}, nil)
	}

	_, err := fmt.Fprintln(p.w, msg)

	return err
}

func (p *Printer) table(t Table) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	if len(t.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	}

	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "\t", " ")
		}

		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// KeyValues builds a two column table from alternating keys and values.
func KeyValues(kv ...string) Table {
	t := Table{Header: []string{"FIELD", "VALUE"}}
	for i := 0; i+1 < len(kv); i += 2 {
		t.Append(kv[i], kv[i+1])
	}

	return t
}
