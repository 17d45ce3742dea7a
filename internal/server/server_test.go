package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/config"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/storage/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t     *testing.T
	ts    *httptest.Server
	store *memory.Store
}

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		StorageDriver:  config.DriverMemory,
		JWTSecret:      "test-secret",
		JWTIssuer:      "society-backend",
		JWTTTL:         time.Hour,
		CORSOrigins:    []string{"*"},
		EmailDomain:    "society.local",
		ResetRateLimit: "100-M",
		LoginRateLimit: "100-M",
		Bootstrap: config.BootstrapAdmin{
			Email:    "root@society.local",
			Password: "root-pass",
		},
	}
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	store := memory.NewStore()
	srv, err := New(t.Context(), cfg, store, nil, Options{Hasher: auth.BcryptHasher{Cost: 4}})
	require.NoError(t, err)
	require.NoError(t, srv.BootstrapAdmin(t.Context()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = srv.limits.Close() })
	return &harness{t: t, ts: ts, store: store}
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.ts.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (h *harness) login(email, password string) (string, models.Account) {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, status, env.Message)
	var out struct {
		Token   string         `json:"token"`
		Account models.Account `json:"account"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &out))
	return out.Token, out.Account
}

func TestServer_AdminCreatedAccount(t *testing.T) {
	h := newHarness(t, testConfig())
	admin, _ := h.login("root@society.local", "root-pass")

	status, env := h.do(http.MethodPost, "/admin/create-user", admin, map[string]any{
		"fullName": "Asha Rao", "phone": "9876543210", "role": "resident",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.True(t, env.Success)

	var created struct {
		Account models.Account `json:"account"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "9876543210@society.local", created.Account.Email)
	assert.True(t, created.Account.IsActive)

	token, account := h.login("9876543210@society.local", "9876543210")
	assert.True(t, account.MustChangePassword)

	t.Run("Should block other routes until the password changes", func(t *testing.T) {
		status, env := h.do(http.MethodGet, "/admin/reset-requests", token, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "password change required", env.Message)

		status, _ = h.do(http.MethodGet, "/me", token, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("Should reject a short password", func(t *testing.T) {
		status, _ := h.do(http.MethodPost, "/change-password", token, map[string]string{"newPassword": "12345"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Should lift the block after a change", func(t *testing.T) {
		status, env := h.do(http.MethodPost, "/change-password", token, map[string]string{"newPassword": "asha-new-1"})
		require.Equal(t, http.StatusOK, status, env.Message)

		fresh, account := h.login("9876543210@society.local", "asha-new-1")
		assert.False(t, account.MustChangePassword)

		status, env = h.do(http.MethodGet, "/admin/reset-requests", fresh, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "insufficient role", env.Message)
	})
}

func TestServer_AdminGates(t *testing.T) {
	h := newHarness(t, testConfig())
	status, _ := h.do(http.MethodPost, "/register", "", map[string]string{
		"fullName": "Neha", "email": "neha@example.com", "phone": "9222222222", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status)
	resident, _ := h.login("neha@example.com", "hunter22")

	status, _ = h.do(http.MethodPost, "/admin/create-user", resident, map[string]any{
		"fullName": "X", "phone": "9000000000", "role": "security",
	})
	assert.Equal(t, http.StatusForbidden, status)
	_, err := h.store.AccountByEmail(t.Context(), "9000000000@society.local")
	assert.Error(t, err)

	status, _ = h.do(http.MethodPost, "/admin/create-user", "", map[string]any{
		"fullName": "X", "phone": "9000000000", "role": "security",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodPost, "/register", "", map[string]string{
		"fullName": "Neha", "email": "neha@example.com", "phone": "9222222222", "password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(http.MethodGet, "/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	t.Run("Should check the role before reading the body", func(t *testing.T) {
		empty := map[string]any{}
		cases := []struct {
			method string
			path   string
			token  string
			body   any
			want   int
		}{
			{http.MethodPost, "/admin/reject-reset", resident, empty, http.StatusForbidden},
			{http.MethodPost, "/admin/approve-reset", resident, empty, http.StatusForbidden},
			{http.MethodPost, "/admin/create-user", resident, map[string]any{"role": "resident"}, http.StatusForbidden},
			{http.MethodPost, "/admin/update-role", resident, empty, http.StatusForbidden},
			{http.MethodPost, "/admin/reset-password", resident, empty, http.StatusForbidden},
			{http.MethodPost, "/admin/reset-password", "", empty, http.StatusUnauthorized},
			{http.MethodPost, "/admin/reject-reset", "", empty, http.StatusUnauthorized},
			{http.MethodGet, "/admin/reset-requests?status=bogus", "", nil, http.StatusUnauthorized},
			{http.MethodGet, "/admin/reset-requests?status=bogus", resident, nil, http.StatusForbidden},
		}
		for _, tc := range cases {
			status, env := h.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.want, status, "%s %s: %s", tc.method, tc.path, env.Message)
		}
	})

	t.Run("Should reject a password longer than 72 bytes", func(t *testing.T) {
		status, env := h.do(http.MethodPost, "/change-password", resident, map[string]string{
			"newPassword": strings.Repeat("x", 80),
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "password must be at most 72 bytes", env.Message)

		status, _ = h.do(http.MethodPost, "/register", "", map[string]string{
			"fullName": "Long", "email": "long@example.com", "phone": "9333333333", "password": strings.Repeat("y", 73),
		})
		assert.Equal(t, http.StatusBadRequest, status)

		h.login("neha@example.com", "hunter22")
	})
}

func TestServer_ResetWorkflow(t *testing.T) {
	h := newHarness(t, testConfig())
	admin, _ := h.login("root@society.local", "root-pass")
	status, _ := h.do(http.MethodPost, "/register", "", map[string]string{
		"fullName": "Neha", "email": "neha@example.com", "phone": "9222222222", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status)
	resident, residentAccount := h.login("neha@example.com", "hunter22")

	t.Run("Should report unknown emails as not found", func(t *testing.T) {
		status, env := h.do(http.MethodPost, "/request-password-reset", "", map[string]string{"email": "nobody@x.com"})
		assert.Equal(t, http.StatusNotFound, status)
		assert.False(t, env.Success)
	})

	status, env := h.do(http.MethodPost, "/request-password-reset", "", map[string]string{"email": "neha@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password reset request submitted", env.Message)
	status, env = h.do(http.MethodPost, "/request-password-reset", "", map[string]string{"email": "neha@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "A password reset request is already pending", env.Message)

	status, env = h.do(http.MethodGet, "/admin/reset-requests?status=pending", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var pending []models.PasswordResetRequest
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, residentAccount.ID, pending[0].UserID)

	status, _ = h.do(http.MethodPost, "/admin/approve-reset", resident, map[string]string{"resetRequestId": pending[0].ID})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodPost, "/admin/approve-reset", admin, map[string]string{
		"resetRequestId": pending[0].ID, "adminNotes": "verified by phone",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var resolved models.PasswordResetRequest
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, models.ResetApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	status, _ = h.do(http.MethodPost, "/admin/reject-reset", admin, map[string]string{"resetRequestId": pending[0].ID})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(http.MethodPost, "/admin/reset-password", admin, map[string]string{
		"userId": residentAccount.ID, "newPassword": "fresh-pass",
	})
	require.Equal(t, http.StatusOK, status)
	h.login("neha@example.com", "fresh-pass")
}

func TestServer_RateLimitsResetSubmission(t *testing.T) {
	cfg := testConfig()
	cfg.ResetRateLimit = "2-M"
	h := newHarness(t, cfg)

	for range 2 {
		status, _ := h.do(http.MethodPost, "/request-password-reset", "", map[string]string{"email": "nobody@x.com"})
		assert.Equal(t, http.StatusNotFound, status)
	}
	status, env := h.do(http.MethodPost, "/request-password-reset", "", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.False(t, env.Success)

	status, _ = h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestNew_RejectsBadRate(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRateLimit = "lots"
	_, err := New(t.Context(), cfg, memory.NewStore(), nil, Options{})
	assert.Error(t, err)
}
