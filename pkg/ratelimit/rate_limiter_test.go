package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tikiti/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:                  true,
		WindowDuration:           time.Minute,
		DefaultRequests:          5,
		PublicRequests:           5,
		SelectionRequests:        5,
		CheckoutCriticalRequests: 2,
		HealthRequests:           100,
	}
}

func TestGetRateLimitType(t *testing.T) {
	cases := map[string]RateLimitType{
		"/health":                               RateLimitTypeHealth,
		"/api/v1/events":                        RateLimitTypePublic,
		"/api/v1/events/:eventId":               RateLimitTypePublic,
		"/api/v1/events/:eventId/selections":    RateLimitTypeSelection,
		"/api/v1/selections/:selectionId":       RateLimitTypeSelection,
		"/api/v1/checkouts/:checkoutId/billing": RateLimitTypeSelection,
		"/api/v1/checkouts/:checkoutId/submit":  RateLimitTypeCheckoutCritical,
		"/api/v1/payments/callback":             RateLimitTypeCheckoutCritical,
		"/api/v1/orders/:orderId":               RateLimitTypeSelection,
		"/swagger/*any":                         RateLimitTypeDefault,
	}
	for path, want := range cases {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMemoryWindowLimits(t *testing.T) {
	rl := NewRateLimiter(nil, testConfig())
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCheckoutCritical)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCheckoutCritical)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	// other clients and other classes are counted separately
	res, err = rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeCheckoutCritical)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	now = now.Add(61 * time.Second)
	res, err = rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCheckoutCritical)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestWhitelistAndDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CheckoutCriticalRequests = 0
	cfg.WhitelistedIPs = []string{"127.0.0.1"}
	rl := NewRateLimiter(nil, cfg)

	res, err := rl.IsAllowed(context.Background(), "127.0.0.1", RateLimitTypeCheckoutCritical)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	cfg.Enabled = false
	res, err = rl.IsAllowed(context.Background(), "10.0.0.9", RateLimitTypeCheckoutCritical)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMiddlewareRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.PublicRequests = 1
	r := gin.New()
	r.Use(Middleware(NewRateLimiter(nil, cfg), logger.Discard()))
	r.GET("/api/v1/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
