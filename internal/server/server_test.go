package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/auth"
	"github.com/hongminglow/mposter-be/internal/config"
	"github.com/hongminglow/mposter-be/internal/storage/sqlite"
)

func newRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	store, accounts, tokens := newDeps(t)
	return NewRouter(cfg, store, accounts, tokens)
}

func newDeps(t *testing.T) (*sqlite.Store, *account.Service, *auth.TokenManager) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewTokenManager("server-secret", "mposter-test")
	accounts := account.NewService(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	return store, accounts, tokens
}

const annJSON = `{"name":"Ann","email":"ann@x.com","password":"secret1","mobile":"9876543210"}`

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutesUnderBasePath(t *testing.T) {
	h := newRouter(t, config.Config{APIBasePath: "/api", CORSOrigins: []string{"*"}})

	assert.Equal(t, http.StatusCreated, serve(h, http.MethodPost, "/api/register", annJSON).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/register", annJSON).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/partyLists", "").Code)
}

func TestRoutesAtRoot(t *testing.T) {
	h := newRouter(t, config.Config{CORSOrigins: []string{"*"}})

	rec := serve(h, http.MethodPost, "/register", annJSON)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	rec = serve(h, http.MethodPost, "/login", `{"email":"ann@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
}

func TestCORSHeadersApplied(t *testing.T) {
	h := newRouter(t, config.Config{CORSOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// freePort returns a TCP port nothing is listening on at the time of the call.
func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func TestRunStopsOnCancel(t *testing.T) {
	port := freePort(t)
	store, accounts, tokens := newDeps(t)
	srv := New(config.Config{Port: port, CORSOrigins: []string{"*"}}, store, accounts, tokens)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err != nil {
			return false
		}
		_ = res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRunReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })
	port := strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	store, accounts, tokens := newDeps(t)
	srv := New(config.Config{Port: port}, store, accounts, tokens)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), time.Second) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run kept waiting after the listener failed")
	}
}
