package middleware

import (
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/pkg/response"
)

// ipLimiter 单个客户端 IP 的令牌桶及最近访问时间
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Throttle 按客户端 IP 的进程内令牌桶，用于未登录的认证接口
type Throttle struct {
	rate  rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewThrottle 创建限流器并启动后台清理
func NewThrottle(cfg config.AuthThrottleConfig) *Throttle {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	t := &Throttle{
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idle:     10 * time.Minute,
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}

	go t.cleanupLoop(5 * time.Minute)

	return t
}

// Stop 停止后台清理
func (t *Throttle) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}

// Middleware 超出速率返回 429
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !t.limiterFor(ip).Allow() {
			slog.WarnContext(c.Request.Context(), "auth throttle exceeded",
				slog.String("client_ip", ip),
				slog.String("path", c.FullPath()),
			)
			c.Header("Retry-After", strconv.Itoa(t.retryAfterSeconds()))
			response.QuotaError(c, "Too many attempts, slow down")
			c.Abort()
			return
		}

		c.Next()
	}
}

// Len 当前跟踪的 IP 数
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

func (t *Throttle) limiterFor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limiters[ip]; ok {
		l.lastAccess = time.Now()
		return l.limiter
	}

	l := &ipLimiter{
		limiter:    rate.NewLimiter(t.rate, t.burst),
		lastAccess: time.Now(),
	}
	t.limiters[ip] = l
	return l.limiter
}

func (t *Throttle) retryAfterSeconds() int {
	seconds := math.Ceil(1.0 / float64(t.rate))
	if seconds < 1 {
		return 1
	}
	return int(seconds)
}

func (t *Throttle) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.cleanup(time.Now())
		case <-t.stopCh:
			return
		}
	}
}

// cleanup 删除空闲超过 idle 的条目
func (t *Throttle) cleanup(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ip, l := range t.limiters {
		if now.Sub(l.lastAccess) > t.idle {
			delete(t.limiters, ip)
		}
	}
}
