package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/auth"
	"github.com/hongminglow/mposter-be/internal/storage/backend"
)

// TestAuthIntegration exercises register, login and update against the
// database named by DATABASE_URL.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, kind, err := backend.Open(ctx, dbURL, envOr("MONGO_DATABASE", "mposter"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()
	t.Logf("using %s backend", kind)

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), envOr("JWT_ISSUER", "mposter-backend"))
	accounts := account.NewService(store, auth.NewBcryptHasher(10), tokens)

	r := chi.NewRouter()
	NewAuthHandler(accounts, tokens).Register(r)
	NewUserHandler(accounts).Register(r)

	ts := httptest.NewServer(r)
	defer ts.Close()

	stamp := time.Now().UnixNano()
	email := fmt.Sprintf("apitest_%d@example.com", stamp)
	password := fmt.Sprintf("Pass!%d", stamp)

	var reg registerBody
	postJSON(t, ts.URL+"/register", map[string]string{
		"name":     "API Test",
		"email":    email,
		"password": password,
		"mobile":   fmt.Sprintf("9%09d", stamp%1_000_000_000),
	}, http.StatusCreated, &reg)
	if reg.User.Email != email || reg.User.Role != "user" {
		t.Fatalf("register mismatch: got %+v", reg.User)
	}

	var login loginBody
	postJSON(t, ts.URL+"/login", map[string]string{"email": email, "password": password}, http.StatusOK, &login)
	if login.User.ID != reg.User.ID {
		t.Fatalf("login returned wrong user id: want %s got %s", reg.User.ID, login.User.ID)
	}
	if strings.TrimSpace(login.Token) == "" {
		t.Fatal("login response missing token")
	}

	var upd updateBody
	sendJSON(t, http.MethodPut, ts.URL+"/users/update/"+reg.User.ID, map[string]string{"mobile": "9999999999"}, http.StatusOK, &upd)
	if upd.User.Mobile != "9999999999" || upd.User.Email != email {
		t.Fatalf("update mismatch: got %+v", upd.User)
	}

	t.Logf("created user %s (id=%s), logged in and updated", email, reg.User.ID)
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, out any) {
	t.Helper()
	sendJSON(t, http.MethodPost, url, payload, wantStatus, out)
}

func sendJSON(t *testing.T, method, url string, payload any, wantStatus int, out any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s status = %d, want %d", method, url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
