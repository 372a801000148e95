package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
)

func rateLimitedRouter(limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	// No Redis client: exercises the in-process fallback path.
	rm := middleware.NewRateLimiterMiddleware(nil, limit, window)

	r := gin.New()
	r.POST("/v1/auth/login", rm.Limit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	r := rateLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d within the limit", i+1)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiter_PerClient(t *testing.T) {
	r := rateLimitedRouter(1, time.Minute)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// First client is now over its budget.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client is unaffected.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
