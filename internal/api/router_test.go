package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/rfpmarket/internal/api"
	mw "github.com/kiranshivaraju/rfpmarket/internal/api/middleware"
	"github.com/kiranshivaraju/rfpmarket/internal/cache"
)

const testSecret = "router-test-secret-32-bytes-long!!"

// --- stub roles ---

type stubRoles struct{ role string }

func (s stubRoles) UserRole(_ context.Context, _ uuid.UUID) (string, error) {
	if s.role == "" {
		return "", mw.ErrNoRole
	}
	return s.role, nil
}

// --- stub cache ---

type stubCache struct{}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *stubCache) Ping(_ context.Context) error                                     { return nil }
func (c *stubCache) SetUserRole(_ context.Context, _ uuid.UUID, _ string, _ time.Duration) error {
	return nil
}
func (c *stubCache) GetUserRole(_ context.Context, _ uuid.UUID) (string, bool, error) {
	return "", false, nil
}
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func newTestRouter(role string) http.Handler {
	ok := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
	return api.NewRouter(api.Dependencies{
		Auth:         mw.NewAuth(testSecret, stubRoles{role: role}),
		RateLimit:    mw.NewRateLimit(&stubCache{}, 60),
		MaxBodyBytes: 64,
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
		EvaluateAdoptionHandler: ok,
		AnalyzeProposalHandler: func(w http.ResponseWriter, r *http.Request) {
			var v map[string]any
			if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusOK)
		},
	})
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter("consultant")

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/process-adoption-csv"},
		{"POST", "/api/v1/evaluate-adoption"},
		{"POST", "/api/v1/analyze-proposal"},
		{"GET", "/api/v1/audits"},
		{"GET", "/api/v1/audits/" + uuid.NewString()},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_ConsultantRoutes_RejectOtherRoles(t *testing.T) {
	router := newTestRouter("vendor")

	req := httptest.NewRequest("POST", "/api/v1/evaluate-adoption", nil)
	req.Header.Set("Authorization", bearer(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AnalyzeProposal_AnyRole(t *testing.T) {
	router := newTestRouter("vendor")

	req := httptest.NewRequest("POST", "/api/v1/analyze-proposal", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnwiredHandler_NotImplemented(t *testing.T) {
	router := newTestRouter("consultant")

	req := httptest.NewRequest("GET", "/api/v1/audits", nil)
	req.Header.Set("Authorization", bearer(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	router := newTestRouter("consultant")

	body := `{"rfpTitle":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest("POST", "/api/v1/analyze-proposal", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

var _ cache.Cache = (*stubCache)(nil)
