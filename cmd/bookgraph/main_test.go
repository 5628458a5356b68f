package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()
	oldOut, oldErr := os.Stdout, os.Stderr
	defer func() {
		os.Stdout, os.Stderr = oldOut, oldErr
	}()

	outR, outW, _ := os.Pipe()
	errR, errW, _ := os.Pipe()
	os.Stdout, os.Stderr = outW, errW

	doneOut := make(chan struct{})
	var bufOut bytes.Buffer
	go func() { io.Copy(&bufOut, outR); close(doneOut) }()

	doneErr := make(chan struct{})
	var bufErr bytes.Buffer
	go func() { io.Copy(&bufErr, errR); close(doneErr) }()

	err = fn()
	outW.Close()
	errW.Close()
	<-doneOut
	<-doneErr
	stdout, stderr = bufOut.String(), bufErr.String()
	return
}

func TestHelp(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"help", "serve"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "serve FLAGS")

	_, stderr, err := captureOutput(t, func() error {
		return run([]string{"frobnicate"})
	})
	require.ErrorContains(t, err, "unknown command")
	require.Contains(t, stderr, "COMMANDS:")
}

func TestPrintSchema(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"print-schema"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "type Query {")
	require.Contains(t, out, "  books: [Book]")
	require.Contains(t, out, "  addBook(name: String!, authorId: Int!): Book")
	require.NotContains(t, out, "__schema")

	path := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, run([]string{"print-schema", "-out", path}))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, out, string(written))
}

func TestQuery(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"query", "-q", `query ($id: Int) { author(id: $id) { name books { name } } }`, "-vars", `{"id": 3}`})
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"data":{"author":{"name":"Brent Weeks","books":[{"name":"The Way of Shadows"},{"name":"Beyond the Shadows"}]}}}`, out)

	out, _, err = captureOutput(t, func() error {
		return run([]string{"query", "-q", `{ book(id: 1) { author } }`})
	})
	require.NoError(t, err)
	require.Contains(t, out, "EMPTY_SELECTION_ON_COMPOSITE_FIELD")
	require.Contains(t, out, `"data": null`)

	_, _, err = captureOutput(t, func() error { return run([]string{"query"}) })
	require.ErrorContains(t, err, "-q is required")

	err = run([]string{"query", "-q", "{ book("})
	require.ErrorContains(t, err, "parse query")
}

func TestQueryWithSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("authors:\n  - {id: 1, name: \"Ursula K. Le Guin\"}\n"), 0o644))

	out, _, err := captureOutput(t, func() error {
		return run([]string{"query", "-seed", seed, "-q", `mutation { addAuthor(name: "B") { id } }`})
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"data":{"addAuthor":{"id":2}}}`, out)
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  pretty: true
executor:
  parallelism: 2
`), 0o644))

	cfg, err := serveFlags([]string{
		"-config", path,
		"-server.addr", ":9100",
		"-server.cors", "http://a.example", "-server.cors", "http://b.example",
		"-executor.max-depth", "4",
		"-server.timeout", "3s",
	})
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.Server.Addr)
	require.True(t, cfg.Server.Pretty)
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	require.Equal(t, 2, cfg.Executor.Parallelism)
	require.Equal(t, 4, cfg.Executor.MaxDepth)
	require.Equal(t, 3*time.Second, cfg.Server.Timeout)
	require.True(t, cfg.Server.GraphiQL)

	_, err = serveFlags([]string{"-seed", filepath.Join(t.TempDir(), "none.yaml")})
	require.ErrorContains(t, err, "read seed")

	_, err = serveFlags([]string{"-config", filepath.Join(t.TempDir(), "bookgrpah.yaml")})
	require.ErrorContains(t, err, "read config")
}

func TestNewHandler(t *testing.T) {
	cfg, err := serveFlags([]string{"-executor.max-depth", "2"})
	require.NoError(t, err)
	h := newHandler(cfg)

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ book(id: 1) { author { name } } }"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"book":{"author":{"name":"J. K. Rowling"}}}}`, w.Body.String())

	req = httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ book(id: 1) { author { books { name } } } }"}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Contains(t, w.Body.String(), "DEPTH_LIMIT_EXCEEDED")

	req = httptest.NewRequest("POST", "/other", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
