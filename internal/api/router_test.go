package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/retention-backend-go/internal/config"
	"github.com/jengzang/retention-backend-go/internal/handler"
	"github.com/jengzang/retention-backend-go/internal/middleware"
	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/service"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type noOrders struct{}

func (noOrders) FetchOrders(ctx context.Context) ([]models.Order, error) { return nil, nil }

type noSpots struct{}

func (noSpots) FetchAdSpotRecords(ctx context.Context) ([]models.AdSpotRecord, error) { return nil, nil }

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T, rateLimit int) *gin.Engine {
	t.Helper()

	dashboard, err := config.DefaultDashboard()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClock()
	loader, err := service.NewDatasetLoader(&service.LoaderConfig{
		Logger:     logger,
		Clock:      clock,
		Orders:     noOrders{},
		AdSpots:    noSpots{},
		NewBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	require.NoError(t, err)
	t.Cleanup(loader.Close)

	cfg := &config.Config{JWTSecret: testSecret}
	return SetupRouter(cfg, logger, middleware.NewRateLimiter(rateLimit, time.Minute, clock), Handlers{
		Health:    handler.NewHealthHandler(map[string]handler.Pinger{"orders": okPinger{}}),
		Retention: handler.NewRetentionHandler(service.NewRetentionService(loader, dashboard, clock, logger)),
		Marketing: handler.NewMarketingHandler(service.NewMarketingService(loader, dashboard, clock, logger)),
		Admin:     handler.NewAdminHandler(loader),
	})
}

func serve(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_Routes(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 100)
	routes := []string{
		"/health",
		"/metrics",
		"/api/v1/retention/months",
		"/api/v1/retention/monthly",
		"/api/v1/retention/delay-histogram",
		"/api/v1/retention/purchase-sequence",
		"/api/v1/marketing/timezones",
		"/api/v1/marketing/user-stats",
		"/api/v1/marketing/ranking",
	}
	for _, route := range routes {
		w := serve(r, http.MethodGet, route, nil)
		assert.Equal(t, http.StatusOK, w.Code, route)
	}

	// an empty ledger has no defined percentages but still answers
	w := serve(r, http.MethodGet, "/api/v1/retention/overall", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"repeat_pct":null`)
}

func TestSetupRouter_CORS(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 100)
	w := serve(r, http.MethodOptions, "/api/v1/retention/monthly", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRouter_AdminRequiresToken(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 100)
	w := serve(r, http.MethodPost, "/api/v1/admin/datasets/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.IssueToken([]byte(testSecret), "ops", time.Hour, time.Now())
	require.NoError(t, err)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	w = serve(r, http.MethodPost, "/api/v1/admin/datasets/refresh", header)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "datasets refreshed")
}

func TestSetupRouter_RateLimitsAPI(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 2)
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/retention/months", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/api/v1/retention/months", nil).Code)

	// health checks are not limited
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)
}
