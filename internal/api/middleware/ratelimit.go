package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/career_compass/internal/model"
	"github.com/qs3c/career_compass/internal/pkg/response"
	"github.com/qs3c/career_compass/internal/service"
)

// Limiter 按用户和接口计数的限流器
type Limiter interface {
	Allow(ctx context.Context, user *model.User, action string) service.Decision
	Window() time.Duration
}

// RateLimit 按订阅等级限流，必须放在 Auth 之后。
// 计数 key 使用路由模板，每个接口单独计数。
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		action := c.FullPath()
		if action == "" {
			action = c.Request.URL.Path
		}

		decision := limiter.Allow(c.Request.Context(), user, action)
		if !decision.Allowed {
			slog.WarnContext(c.Request.Context(), "rate limit exceeded",
				slog.Int64("user_id", user.ID),
				slog.String("tier", string(user.Tier)),
				slog.String("action", action),
				slog.Int("limit", decision.Limit),
			)
			c.Header("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
			response.QuotaError(c, "Rate limit exceeded for your subscription tier")
			c.Abort()
			return
		}

		c.Next()
	}
}
