package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/accounts"
	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/identity"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage/postgres"
)

// TestAuthIntegration exercises the register/login endpoints against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	secret := mustGetEnv(t, "JWT_SECRET")
	issuer := mustGetEnv(t, "JWT_ISSUER")
	ttl := mustGetTTL(t)
	tokens := auth.NewTokenManager(secret, issuer, ttl)
	provider := identity.NewProvider(store, store, nil, tokens)
	svc := accounts.NewService(store, provider, accounts.Config{}, zap.NewNop())

	mux := http.NewServeMux()
	NewAuthHandler(svc, zap.NewNop()).Register(mux)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	stamp := time.Now().UnixNano()
	email := fmt.Sprintf("apitest_%d@example.com", stamp)
	phone := fmt.Sprintf("+1555%07d", stamp%1_000_0000)
	password := fmt.Sprintf("Pass!%d", stamp)

	account := requestRegister(t, ts.URL, map[string]string{
		"fullName": "API Test",
		"email":    email,
		"phone":    phone,
		"password": password,
	})
	if account.Email != email || account.Phone != phone || account.Role != models.RoleResident {
		t.Fatalf("register mismatch: got %+v", account)
	}

	loggedIn := requestLogin(t, ts.URL, email, password)
	if loggedIn.Account.ID != account.ID {
		t.Fatalf("login returned wrong account id: want %s got %s", account.ID, loggedIn.Account.ID)
	}
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}

	t.Logf("created account %s (id=%s) and logged in via /login", email, account.ID)
}

type envelopeBody[T any] struct {
	Data T `json:"data"`
}

type loginResponseBody struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, out any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", url, err)
	}
}

func requestRegister(t *testing.T, baseURL string, payload map[string]string) models.Account {
	t.Helper()
	var out envelopeBody[models.Account]
	postJSON(t, baseURL+"/register", payload, http.StatusCreated, &out)
	return out.Data
}

func requestLogin(t *testing.T, baseURL, email, password string) loginResponseBody {
	t.Helper()
	var out envelopeBody[loginResponseBody]
	postJSON(t, baseURL+"/login", map[string]string{"email": email, "password": password}, http.StatusOK, &out)
	return out.Data
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := mustGetEnv(t, "JWT_TTL_MINUTES")
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
}

func loadDotEnv() {
	for _, path := range []string{".env", "../.env", "../../.env", "../../../.env"} {
		_ = godotenv.Overload(path)
	}
}
