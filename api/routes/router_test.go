package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbaptiste/cardfolio-backend/internal/admin"
	"github.com/jbaptiste/cardfolio-backend/internal/portfolio"
	pkgAuth "github.com/jbaptiste/cardfolio-backend/pkg/auth"
	"github.com/jbaptiste/cardfolio-backend/pkg/auth/session"
	"github.com/jbaptiste/cardfolio-backend/pkg/config"
	"github.com/jbaptiste/cardfolio-backend/pkg/metrics"
)

type allowAllSessions struct{}

func (allowAllSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubPortfolioService struct {
	portfolio.Service
	views []portfolio.HoldingView
}

func (s *stubPortfolioService) List(context.Context, uuid.UUID) ([]portfolio.HoldingView, error) {
	return s.views, nil
}

type stubAdminService struct {
	admin.Service
}

func (s *stubAdminService) Overview(context.Context) (*admin.Overview, error) {
	return &admin.Overview{Users: 3}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "cardfolio", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:           testConfig(),
		Session:          allowAllSessions{},
		PortfolioService: &stubPortfolioService{views: []portfolio.HoldingView{}},
		AdminService:     &stubAdminService{},
	})
}

func mintToken(t *testing.T, role pkgAuth.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(
		testConfig().JWT,
		time.Now(),
		pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role, JTI: session.NewAccessID()},
	)
	require.NoError(t, err)
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Cardfolio-Env"))
}

func TestPortfolioRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortfolioListWithToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, pkgAuth.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/overview", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, pkgAuth.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/overview", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, pkgAuth.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpointExposed(t *testing.T) {
	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := NewRouter(RouterParams{
		Config:           testConfig(),
		Session:          allowAllSessions{},
		Metrics:          httpMetrics,
		Registry:         registry,
		PortfolioService: &stubPortfolioService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
