package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshhq/kosh/internal/adapter/memory"
	"github.com/koshhq/kosh/internal/adapter/ratelimit"
	"github.com/koshhq/kosh/internal/auth"
	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/usecase"
)

type testServer struct {
	handler http.Handler
	token   string
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	audit := usecase.NewAuditTrail(store, logger)
	registry := usecase.NewAssetRegistry(store, audit, logger)
	engine := usecase.NewAssignmentEngine(store, audit, nil, logger)
	maintenance := usecase.NewMaintenanceEngine(store, audit, nil, logger)
	onboarding := usecase.NewOnboardingService(store, engine, logger)

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.Generate("admin-1")
	require.NoError(t, err)

	limiter, err := ratelimit.NewLimiter(ratelimit.Config{Enabled: false}, logger)
	require.NoError(t, err)

	srv := NewServer(ServerConfig{Port: "0"}, registry, engine, maintenance, onboarding, audit, tokens, limiter, logger)
	return &testServer{handler: srv.Handler(), token: token, store: store}
}

func (ts *testServer) do(method, path, body string, authorized bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/v1/assets", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAssetEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/v1/assets", `{
		"name": "Dell Latitude",
		"category": "Laptop",
		"serial_number": "DL-1025",
		"cost": 1200,
		"purchase_date": "2025-03-14"
	}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Duplicate serial number is a conflict
	w = ts.do("POST", "/api/v1/assets", `{
		"name": "Another Laptop",
		"category": "Laptop",
		"serial_number": "DL-1025"
	}`, true)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateAssetEndpoint_BadDate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/v1/assets", `{
		"name": "Dell Latitude",
		"category": "Laptop",
		"serial_number": "DL-1025",
		"purchase_date": "14/03/2025"
	}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAssetEndpoint_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/v1/assets/NOPE-1", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignAndReturnEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	w := ts.do("POST", "/api/v1/assets", `{
		"name": "Dell Latitude",
		"category": "Laptop",
		"serial_number": "DL-1025",
		"cost": 1200
	}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, ts.store.Repos().Holders.Create(ctx, domain.NewHolder("Alice", "alice@example.com", "hash")))

	w = ts.do("POST", "/api/v1/assets/DL-1025/assign", `{"holder_email":"alice@example.com"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Double assignment is a conflict
	w = ts.do("POST", "/api/v1/assets/DL-1025/assign", `{"holder_email":"alice@example.com"}`, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do("POST", "/api/v1/assets/DL-1025/return", `{"remarks":"handed back"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	asset, err := ts.store.Repos().Assets.FindBySerial(ctx, "DL-1025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusAvailable, asset.Status)
}

func TestMaintenanceEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/v1/assets", `{
		"name": "HP Monitor",
		"category": "Monitor",
		"serial_number": "HP-220",
		"cost": 300
	}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do("POST", "/api/v1/assets/HP-220/repair", `{"remarks":"dead pixels"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("POST", "/api/v1/assets/HP-220/repaired", "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("POST", "/api/v1/assets/HP-220/retire", `{"remarks":"end of life"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	// Retired is terminal
	w = ts.do("POST", "/api/v1/assets/HP-220/repair", "", true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do("GET", "/api/v1/assets/HP-220/history", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLogsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/v1/assets", `{
		"name": "Dell Latitude",
		"category": "Laptop",
		"serial_number": "DL-1025"
	}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do("GET", "/api/v1/audit-logs?page=1&limit=10", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asset Created")
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/v1/assets", `{
		"name": "Dell Latitude",
		"category": "Laptop",
		"serial_number": "DL-1025"
	}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do("GET", "/api/v1/assets/stats", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":1`)
}
