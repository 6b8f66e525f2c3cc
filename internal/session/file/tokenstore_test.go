package sessionfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/session"
	sessionfile "github.com/ipsfa/inventario-client/internal/session/file"
)

func TestTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	store := sessionfile.NewTokenStore(path, "default")

	t.Run("missing file means logged out", func(t *testing.T) {
		tokens, err := store.Load(t.Context())
		require.NoError(t, err)
		assert.True(t, tokens.IsZero())
	})

	t.Run("save creates a private file", func(t *testing.T) {
		want := session.Tokens{Access: "access", Refresh: "refresh"}
		require.NoError(t, store.Save(t.Context(), want))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		got, err := store.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, got)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "accessToken: access")
		assert.Contains(t, string(data), "refreshToken: refresh")
	})

	t.Run("clear removes the last profile", func(t *testing.T) {
		require.NoError(t, store.Clear(t.Context()))
		require.NoError(t, store.Clear(t.Context()))

		_, err := os.Stat(path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestTokenStore_KeepsOtherProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	work := sessionfile.NewTokenStore(path, "work")
	home := sessionfile.NewTokenStore(path, "home")

	require.NoError(t, work.Save(t.Context(), session.Tokens{Access: "w"}))
	require.NoError(t, home.Save(t.Context(), session.Tokens{Access: "h"}))
	require.NoError(t, work.Clear(t.Context()))

	got, err := home.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "h", got.Access)

	got, err = work.Load(t.Context())
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestTokenStore_ExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INVENTARIO_TEST_DIR", dir)

	store := sessionfile.NewTokenStore("$INVENTARIO_TEST_DIR/credentials.yaml", "default")
	assert.Equal(t, filepath.Join(dir, "credentials.yaml"), store.Path())
}

func TestTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [not, a, map"), 0o600))

	_, err := sessionfile.NewTokenStore(path, "default").Load(t.Context())
	assert.Error(t, err)
}
