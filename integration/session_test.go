//go:build integration

package integration_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/config"
)

type whoami struct {
	State string `json:"state"`
	User  *struct {
		Username string `json:"username"`
	} `json:"user"`
	ExpiresAt string `json:"expires_at"`
}

func testSessionFlow(t *testing.T, istat *infraStat) {
	t.Helper()

	_, err := istat.Run(t, "", "assets", "list", "-o", "json")
	require.Error(t, err, "listing assets without a session must fail")

	_, err = istat.Run(t, "wrong\n", "login", "-u", testUser)
	require.Error(t, err, "login with a wrong password must fail")

	out, err := istat.Run(t, testPassword+"\n", "login", "-u", testUser)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as ana")

	out, err = istat.Run(t, "", "whoami", "-o", "json")
	require.NoError(t, err)

	var who whoami
	require.NoError(t, json.Unmarshal([]byte(out), &who), out)
	assert.Equal(t, "authenticated", who.State)
	require.NotNil(t, who.User)
	assert.Equal(t, testUser, who.User.Username)
	assert.NotEmpty(t, who.ExpiresAt)

	out, err = istat.Run(t, "", "assets", "list", "-o", "json")
	require.NoError(t, err)

	var assets []struct {
		ID   int64  `json:"id"`
		Code string `json:"codigo_patrimonial"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &assets), out)
	require.Len(t, assets, 1)
	assert.Equal(t, "ADM-0007", assets[0].Code)

	out, err = istat.Run(t, "", "dashboard", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "1500.00")

	out, err = istat.Run(t, "", "login", "-u", testUser, "-p", testPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Already logged in")

	_, err = istat.Run(t, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, []string{"refresh-" + testUser}, istat.API.Revoked())

	out, err = istat.Run(t, "", "whoami", "-o", "json")
	require.Error(t, err, "whoami after logout must fail, got %s", out)
}

func TestSession_FileTokenStore(t *testing.T) {
	ctx := t.Context()

	istat := initInfra(t, "file-store")
	defer istat.Close(ctx)

	istat.PrepareAPI(t)
	istat.PrepareConfig(t)

	testSessionFlow(t, &istat)
}

func TestSession_ValKeyTokenStore(t *testing.T) {
	ctx := t.Context()

	istat := initInfra(t, "valkey-store")
	defer istat.Close(ctx)

	istat.PrepareAPI(t)
	istat.PrepareValKey(t)
	istat.Cfg.TokenStore.Type = config.TokenStoreValKey
	istat.PrepareConfig(t)

	testSessionFlow(t, &istat)
}

func TestSession_PostgresTokenStore(t *testing.T) {
	ctx := t.Context()

	istat := initInfra(t, "postgres-store")
	defer istat.Close(ctx)

	istat.PrepareAPI(t)
	istat.PreparePostgres(t)
	istat.Cfg.TokenStore.Type = config.TokenStorePostgres
	istat.PrepareConfig(t)

	testSessionFlow(t, &istat)
}
