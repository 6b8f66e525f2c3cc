package assets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/apiclient"
	"github.com/ipsfa/inventario-client/internal/inventory"
)

func TestSaveQRCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bienes/5/qr_code/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer server.Close()

	client, err := apiclient.New(server.URL + "/api")
	require.NoError(t, err)
	store := inventory.NewAssetStore(client)

	t.Run("saved", func(t *testing.T) {
		dir := t.TempDir()

		path, err := saveQRCode(t.Context(), store, 5, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "qr_bien_5.png"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(data))
	})

	t.Run("failure leaves nothing behind", func(t *testing.T) {
		dir := t.TempDir()

		_, err := saveQRCode(t.Context(), store, 6, dir)
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestRow(t *testing.T) {
	got := row(inventory.Asset{
		ID:              3,
		PatrimonialCode: "ADM-0003",
		Description:     "Silla",
		State:           inventory.AssetGood,
		UnitName:        "Administración",
	})

	assert.Equal(t, []string{"3", "ADM-0003", "Silla", "BUENO", "Administración", ""}, got)
}
