package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/api"
	"github.com/qs3c/career_compass/internal/api/handler"
	"github.com/qs3c/career_compass/internal/api/middleware"
	"github.com/qs3c/career_compass/internal/database"
	"github.com/qs3c/career_compass/internal/pkg/cache"
	"github.com/qs3c/career_compass/internal/pkg/llm"
	"github.com/qs3c/career_compass/internal/pkg/logger"
	"github.com/qs3c/career_compass/internal/repository"
	"github.com/qs3c/career_compass/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.SetupDefault(os.Stdout, cfg.Log.Level)

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("database connected", slog.String("driver", cfg.Database.Driver))

	// 初始化 Redis，不可用时限流放行、摘要缓存跳过
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, rate limiting will fail open", slog.String("error", err.Error()))
	} else {
		log.Info("redis connected")
	}
	defer rdb.Close()
	store := cache.NewStore(rdb)

	// 初始化模型，缺少密钥时使用固定回复
	var engine service.ReplyEngine
	llmEngine, engineErr := llm.NewEngine(context.Background(), cfg.LLM)
	if engineErr != nil {
		log.Warn("reply engine not configured, using fallback replies",
			slog.String("provider", cfg.LLM.Provider),
			slog.String("error", engineErr.Error()),
		)
	} else {
		engine = llmEngine
		log.Info("reply engine ready",
			slog.String("provider", llmEngine.Provider()),
			slog.String("model", llmEngine.Model()),
		)
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// 初始化 Service
	creds := service.NewCredentialService(&cfg.JWT)
	authService := service.NewAuthService(userRepo, creds)
	rateLimitService := service.NewRateLimitService(store, &cfg.RateLimit)
	chatService := service.NewChatService(sessionRepo, messageRepo, engine, engineErr, store, cfg.Cache)
	healthService := service.NewHealthService(db, store, cfg.Server.Env, chatService.EngineReady)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	healthHandler := handler.NewHealthHandler(healthService)

	throttle := middleware.NewThrottle(cfg.AuthThrottle)
	defer throttle.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		chatHandler,
		healthHandler,
		authService,
		rateLimitService,
		throttle,
		log,
		cfg,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("server starting", slog.String("addr", addr), slog.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	log.Info("server exited")
}
