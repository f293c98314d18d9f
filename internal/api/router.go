package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/api/handler"
	"github.com/qs3c/career_compass/internal/api/middleware"
	"github.com/qs3c/career_compass/internal/pkg/response"
)

type Router struct {
	authHandler   *handler.AuthHandler
	chatHandler   *handler.ChatHandler
	healthHandler *handler.HealthHandler
	authenticator middleware.Authenticator
	limiter       middleware.Limiter
	throttle      *middleware.Throttle
	logger        *slog.Logger
	cfg           *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
	healthHandler *handler.HealthHandler,
	authenticator middleware.Authenticator,
	limiter middleware.Limiter,
	throttle *middleware.Throttle,
	logger *slog.Logger,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:   authHandler,
		chatHandler:   chatHandler,
		healthHandler: healthHandler,
		authenticator: authenticator,
		limiter:       limiter,
		throttle:      throttle,
		logger:        logger,
		cfg:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	response.UseJSONFieldNames()

	engine := gin.New()
	// 节流按 ClientIP 计数，只有可信代理的 X-Forwarded-For 才生效
	if err := engine.SetTrustedProxies(r.cfg.Server.TrustedProxies); err != nil {
		slog.Warn("invalid trusted proxies, ignoring forwarded headers", slog.String("error", err.Error()))
		_ = engine.SetTrustedProxies(nil)
	}
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	if r.logger != nil {
		engine.Use(middleware.Logger(r.logger))
	}
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", r.healthHandler.Health)

	api := engine.Group("/api")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		if r.throttle != nil {
			auth.Use(r.throttle.Middleware())
		}
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.authenticator))
		{
			authenticated.GET("/sessions", r.chatHandler.ListSessions)

			// 限流先于参数校验
			authenticated.POST("/chat", middleware.RateLimit(r.limiter), r.chatHandler.Chat)
		}
	}

	return engine
}
