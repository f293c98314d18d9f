package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/career_compass/config"
)

func newThrottleRouter(th *Throttle) *gin.Engine {
	router := gin.New()
	router.Use(th.Middleware())
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	return router
}

func loginFrom(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestThrottle_BurstThenReject(t *testing.T) {
	th := NewThrottle(config.AuthThrottleConfig{RequestsPerMinute: 6, Burst: 3})
	defer th.Stop()
	router := newThrottleRouter(th)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, loginFrom(router, "10.0.0.1").Code)
	}

	w := loginFrom(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
}

func TestThrottle_PerIP(t *testing.T) {
	th := NewThrottle(config.AuthThrottleConfig{RequestsPerMinute: 1, Burst: 1})
	defer th.Stop()
	router := newThrottleRouter(th)

	assert.Equal(t, http.StatusOK, loginFrom(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, loginFrom(router, "10.0.0.2").Code)
	assert.Equal(t, 2, th.Len())
}

func TestThrottle_Cleanup(t *testing.T) {
	th := NewThrottle(config.AuthThrottleConfig{RequestsPerMinute: 30, Burst: 5})
	defer th.Stop()
	router := newThrottleRouter(th)

	loginFrom(router, "10.0.0.1")
	loginFrom(router, "10.0.0.2")
	assert.Equal(t, 2, th.Len())

	th.cleanup(time.Now())
	assert.Equal(t, 2, th.Len())

	th.cleanup(time.Now().Add(11 * time.Minute))
	assert.Zero(t, th.Len())
}

func TestThrottle_Defaults(t *testing.T) {
	th := NewThrottle(config.AuthThrottleConfig{})
	defer th.Stop()

	assert.Equal(t, 1, th.burst)
	assert.Equal(t, 2, th.retryAfterSeconds())

	// 重复 Stop 不会 panic
	th.Stop()
}
