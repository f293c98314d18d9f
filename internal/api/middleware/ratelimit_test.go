package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/career_compass/internal/model"
	"github.com/qs3c/career_compass/internal/service"
)

// fakeLimiter 按 action 计数，超过 limit 拒绝
type fakeLimiter struct {
	limit   int64
	counts  map[string]int64
	actions []string
}

func newFakeLimiter(limit int64) *fakeLimiter {
	return &fakeLimiter{limit: limit, counts: make(map[string]int64)}
}

func (f *fakeLimiter) Allow(ctx context.Context, user *model.User, action string) service.Decision {
	f.actions = append(f.actions, action)
	f.counts[action]++
	return service.Decision{
		Allowed: f.counts[action] <= f.limit,
		Count:   f.counts[action],
		Limit:   int(f.limit),
	}
}

func (f *fakeLimiter) Window() time.Duration {
	return time.Minute
}

func newRateLimitRouter(limiter Limiter, user *model.User) *gin.Engine {
	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			c.Set(UserKey, user)
			c.Next()
		})
	}
	router.Use(RateLimit(limiter))
	router.POST("/api/chat", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	router.GET("/api/items/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	return router
}

func TestRateLimit_AllowsUntilLimit(t *testing.T) {
	limiter := newFakeLimiter(2)
	router := newRateLimitRouter(limiter, &model.User{ID: 1, Tier: model.TierFree})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/chat", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/chat", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "Rate limit exceeded for your subscription tier", parseError(t, w).Error)
}

func TestRateLimit_UsesRouteTemplate(t *testing.T) {
	limiter := newFakeLimiter(10)
	router := newRateLimitRouter(limiter, &model.User{ID: 1})

	for _, path := range []string{"/api/items/1", "/api/items/2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, []string{"/api/items/:id", "/api/items/:id"}, limiter.actions)
}

func TestRateLimit_RequiresUser(t *testing.T) {
	limiter := newFakeLimiter(10)
	router := newRateLimitRouter(limiter, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/chat", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, limiter.actions)
}
