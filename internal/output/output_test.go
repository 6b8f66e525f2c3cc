package output_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/output"
)

type row struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

func rowsTable(rows []row) func() output.Table {
	return func() output.Table {
		t := output.Table{Header: []string{"ID", "NOMBRE"}}
		for _, r := range rows {
			t.Append(strconv.FormatInt(r.ID, 10), r.Name)
		}

		return t
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    output.Format
		wantErr bool
	}{
		{in: "", want: output.FormatTable},
		{in: "table", want: output.FormatTable},
		{in: "JSON", want: output.FormatJSON},
		{in: " yaml ", want: output.FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, output.ErrUnknownFormat)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_Print(t *testing.T) {
	rows := []row{{ID: 1, Name: "Sede Central"}, {ID: 2, Name: "Almacén"}}

	tests := []struct {
		format output.Format
		want   string
	}{
		{
			format: output.FormatTable,
			want:   "ID  NOMBRE\n1   Sede Central\n2   Almacén\n",
		},
		{
			format: output.FormatJSON,
			want:   "[\n  {\n    \"id\": 1,\n    \"nombre\": \"Sede Central\"\n  },\n  {\n    \"id\": 2,\n    \"nombre\": \"Almacén\"\n  }\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.NewPrinter(&buf, tt.format).Print(rows, rowsTable(rows)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_PrintYAML(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, output.FormatYAML)
	require.NoError(t, p.Print(row{ID: 3, Name: "Tecnología"}, nil))

	assert.Contains(t, buf.String(), "id: 3")
	assert.Contains(t, buf.String(), "nombre: Tecnología")
}

func TestPrinter_Message(t *testing.T) {
	var table bytes.Buffer
	require.NoError(t, output.NewPrinter(&table, output.FormatTable).Message("Logged out."))
	assert.Equal(t, "Logged out.\n", table.String())

	var js bytes.Buffer
	require.NoError(t, output.NewPrinter(&js, output.FormatJSON).Message("Logged out."))
	assert.JSONEq(t, `{"message":"Logged out."}`, js.String())
}

func TestKeyValues(t *testing.T) {
	tbl := output.KeyValues("username", "ana", "rol", "Administrador", "dangling")
	assert.Equal(t, []string{"FIELD", "VALUE"}, tbl.Header)
	assert.Equal(t, [][]string{{"username", "ana"}, {"rol", "Administrador"}}, tbl.Rows)
}
