//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/goccy/go-yaml"
	"github.com/golang-jwt/jwt/v5"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/config"
	"github.com/ipsfa/inventario-client/internal/dbtest/postgrestest"
	"github.com/ipsfa/inventario-client/internal/dbtest/valkeytest"
)

type closeFunc func(ctx context.Context)

type infraStat struct {
	PostgresPort   nat.Port
	ValKeyPort     nat.Port
	ConfigFilePath string
	Procdir        string
	Cfg            config.Config
	API            *fakeAPI

	closeFuncs []closeFunc
}

func initInfra(t *testing.T, name string) (istat infraStat) {
	t.Helper()

	// The binary reads $PWD/config.yaml, so every test runs it in its own directory.
	wd, err := os.Getwd()
	require.NoError(t, err, "failed to get wd")
	istat.Procdir = filepath.Join(wd, name+"-test")
	istat.ConfigFilePath = filepath.Join(istat.Procdir, "config.yaml")

	err = os.MkdirAll(istat.Procdir, fs.ModePerm)
	require.NoError(t, err, "failed to create a dir for the process")

	err = os.WriteFile(istat.ConfigFilePath, []byte(validConfig), fs.ModePerm)
	require.NoError(t, err, "failed to write config file")

	err = commoncfg.LoadConfig(&istat.Cfg, nil, istat.Procdir)
	require.NoError(t, err, "failed to load config")

	istat.Cfg.Status.Enabled = false
	istat.Cfg.TokenStore.Type = config.TokenStoreFile
	istat.Cfg.TokenStore.Path = filepath.Join(istat.Procdir, "credentials.yaml")

	return istat
}

// PrepareAPI starts a fake inventory API and points the configuration at it.
func (istat *infraStat) PrepareAPI(t *testing.T) {
	t.Helper()

	istat.API = newFakeAPI(t)
	istat.closeFuncs = append(istat.closeFuncs, func(context.Context) { istat.API.Close() })
	istat.Cfg.API.BaseURL = istat.API.URL + "/api"
}

func (istat *infraStat) PreparePostgres(t *testing.T) {
	t.Helper()

	pgClient, pgPort, pgTerminate := postgrestest.Start(t.Context())
	pgClient.Close()

	istat.PostgresPort = pgPort
	istat.closeFuncs = append(istat.closeFuncs, pgTerminate)

	istat.Cfg.Database.Name = postgrestest.DBName
	istat.Cfg.Database.User = commoncfg.SourceRef{Source: "embedded", Value: postgrestest.DBUser}
	istat.Cfg.Database.Password = commoncfg.SourceRef{Source: "embedded", Value: postgrestest.DBPassword}
	istat.Cfg.Database.Host = commoncfg.SourceRef{Source: "embedded", Value: postgrestest.DBHost}
	istat.Cfg.Database.Port = pgPort.Port()
	istat.Cfg.Database.SSLMode = postgrestest.DBSSLMode
}

func (istat *infraStat) PrepareValKey(t *testing.T) {
	t.Helper()

	vkClient, vkPort, vkTerminate := valkeytest.Start(t.Context())
	vkClient.Close()

	istat.ValKeyPort = vkPort
	istat.closeFuncs = append(istat.closeFuncs, vkTerminate)

	istat.Cfg.ValKey.Host = commoncfg.SourceRef{Source: "embedded", Value: valkeytest.Addr(vkPort)}
	istat.Cfg.ValKey.User = commoncfg.SourceRef{Source: "embedded", Value: ""}
	istat.Cfg.ValKey.Password = commoncfg.SourceRef{Source: "embedded", Value: ""}
}

// PrepareConfig writes the configuration into ConfigFilePath.
func (istat *infraStat) PrepareConfig(t *testing.T) {
	t.Helper()

	data, err := yaml.Marshal(istat.Cfg)
	require.NoError(t, err, "failed to encode config")

	err = os.WriteFile(istat.ConfigFilePath, data, 0o600)
	require.NoError(t, err, "failed to write config")
}

// Run executes the binary in Procdir and returns its standard output.
func (istat *infraStat) Run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err, "failed to get wd")

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, filepath.Join(wd, binary), args...)
	cmd.Dir = istat.Procdir
	cmd.Env = append(os.Environ(), "HOME="+istat.Procdir)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		t.Logf("%s stderr: %s", strings.Join(args, " "), stderr.String())
	}

	return stdout.String(), err
}

func (istat *infraStat) Close(ctx context.Context) {
	os.Remove(istat.ConfigFilePath)
	os.RemoveAll(istat.Procdir)

	for _, close := range istat.closeFuncs {
		close(ctx)
	}
}

// fakeAPI answers the endpoints used by the tests for the account ana/secret.
type fakeAPI struct {
	*httptest.Server

	mu      sync.Mutex
	revoked []string
}

const (
	testUser     = "ana"
	testPassword = "secret"
)

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Subject:   "1",
	}).SignedString([]byte("integration"))
	require.NoError(t, err)

	api := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/token/", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != testUser || creds.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": "refresh-" + testUser})
	})

	mux.HandleFunc("POST /api/token/blacklist/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Refresh string `json:"refresh"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.revoked = append(api.revoked, body.Refresh)
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+access {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /api/users/me/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 1, "username": testUser, "first_name": "Ana", "last_name": "Pérez",
			"email": "ana@example.org", "rol": "Administrador",
		})
	}))

	mux.HandleFunc("GET /api/bienes/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 7, "codigo_patrimonial": "ADM-0007", "descripcion": "Escritorio", "estado_bien": "BUENO"},
		})
	}))

	mux.HandleFunc("GET /api/dashboard/stats/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"valor_patrimonial_total": "1500.00", "bienes_obsoletos_count": 1, "unidades_activas_count": 3,
		})
	}))

	api.Server = httptest.NewServer(mux)

	return api
}

func (a *fakeAPI) Revoked() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.revoked...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
