package inventory_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipsfa/inventario-client/internal/apiclient"
)

type reply struct {
	status      int
	body        string
	contentType string
}

type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
	header http.Header
}

// fakeServer answers "METHOD /path" keys with canned replies and records every request.
type fakeServer struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []request
}

func newFakeServer(t *testing.T) (*fakeServer, *apiclient.Client) {
	t.Helper()

	f := &fakeServer{replies: map[string]reply{}}
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)

	client, err := apiclient.New(server.URL + "/api")
	require.NoError(t, err)

	return f, client
}

func (f *fakeServer) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replies[method+" /api"+path] = reply{status: status, body: body, contentType: "application/json"}
}

func (f *fakeServer) onBinary(path, contentType, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replies[http.MethodGet+" /api"+path] = reply{status: http.StatusOK, body: body, contentType: contentType}
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, request{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		body:   body,
		header: r.Header.Clone(),
	})
	rep, ok := f.replies[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", rep.contentType)
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeServer) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if r.method == method && r.path == "/api"+path {
			n++
		}
	}

	return n
}

func (f *fakeServer) last(t *testing.T) request {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)

	return f.requests[len(f.requests)-1]
}

func (f *fakeServer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func ptr[T any](v T) *T {
	return &v
}
