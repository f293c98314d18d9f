package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/career_compass/internal/model"
	"github.com/qs3c/career_compass/internal/pkg/response"
	"github.com/qs3c/career_compass/internal/service"
)

const (
	UserKey = "currentUser"
)

// Authenticator 根据令牌解析当前用户，令牌无效时返回 service.ErrUnauthenticated
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// Auth JWT 认证中间件，缺失、格式错误、无效和过期统一返回 401，查询用户失败返回 500
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				response.AuthError(c, "")
			} else {
				slog.ErrorContext(c.Request.Context(), "failed to load current user", slog.String("error", err.Error()))
				response.ServerError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
