package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func serve(r http.Handler, method, ip, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	req.RemoteAddr = ip + ":40000"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute/10), 10, time.Minute)
	defer rl.Stop()
	r := newRouter(rl.Middleware())

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "10.0.0.1", "").Code, "request %d", i+1)
	}

	w := serve(r, http.MethodPost, "10.0.0.1", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Rate limit exceeded. Please try again later."}`, w.Body.String())

	// buckets are per client IP
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "10.0.0.2", "").Code)
}

func TestRateLimiter_SweepEvictsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Second), 1, time.Minute)
	defer rl.Stop()

	rl.GetLimiter("10.0.0.1")
	rl.GetLimiter("10.0.0.2")
	rl.mu.Lock()
	rl.ips["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	rl.sweep(time.Now())

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.ips, "10.0.0.1")
	assert.Contains(t, rl.ips, "10.0.0.2")
}

func TestRateLimiter_EvictedClientStartsFresh(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.GetLimiter("10.0.0.1").Allow())
	assert.False(t, rl.GetLimiter("10.0.0.1").Allow())

	rl.sweep(time.Now().Add(2 * time.Minute))
	assert.True(t, rl.GetLimiter("10.0.0.1").Allow())
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"https://shop.example", "http://localhost:3000"}))

	t.Run("allowed origin is echoed with credentials", func(t *testing.T) {
		w := serve(r, http.MethodGet, "10.0.0.1", "https://shop.example")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("disallowed origin is forbidden", func(t *testing.T) {
		w := serve(r, http.MethodGet, "10.0.0.1", "https://evil.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answers 204", func(t *testing.T) {
		w := serve(r, http.MethodOptions, "10.0.0.1", "http://localhost:3000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin requests pass untouched", func(t *testing.T) {
		w := serve(r, http.MethodGet, "10.0.0.1", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"*"}))
	w := serve(r, http.MethodGet, "10.0.0.1", "https://anywhere.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000"}, ParseOrigins(""))
	assert.Equal(t,
		[]string{"https://shop.example", "https://admin.shop.example"},
		ParseOrigins(" https://shop.example/ , https://admin.shop.example,, "),
	)
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(newRouter(SecurityHeaders()), http.MethodGet, "10.0.0.1", "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}
