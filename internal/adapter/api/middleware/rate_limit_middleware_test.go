package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newLimitedServer(rl *RateLimiter) *echo.Echo {
	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, rl.RateLimitMiddleware())
	return e
}

func requestFrom(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(2)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	e := newLimitedServer(rl)

	assert.Equal(t, http.StatusOK, requestFrom(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, requestFrom(e, "10.0.0.1").Code)

	rec := requestFrom(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, requestFrom(e, "10.0.0.2").Code)
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	e := newLimitedServer(rl)

	assert.Equal(t, http.StatusOK, requestFrom(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(e, "10.0.0.1").Code)

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, requestFrom(e, "10.0.0.1").Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	e := newLimitedServer(rl)

	requestFrom(e, "10.0.0.1")
	assert.Equal(t, 1, rl.VisitorCount())

	now = now.Add(visitorTTL + time.Second)
	rl.cleanup()
	assert.Equal(t, 0, rl.VisitorCount())
}

func TestMetrics_PassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/things/:id", func(c echo.Context) error {
		return c.String(http.StatusCreated, "made")
	})

	req := httptest.NewRequest(http.MethodGet, "/things/7", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "made", rec.Body.String())
}
