package service

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/career_compass/internal/database"
	"github.com/qs3c/career_compass/internal/model/dto"
)

// Pinger 可探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	db      *gorm.DB
	redis   Pinger
	env     string
	ready   func() bool
	timeout time.Duration
}

func NewHealthService(db *gorm.DB, redis Pinger, env string, ready func() bool) *HealthService {
	return &HealthService{
		db:      db,
		redis:   redis,
		env:     env,
		ready:   ready,
		timeout: 2 * time.Second,
	}
}

// Check 各依赖分别探活，任何一项失败都只反映在结果里
func (s *HealthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp := &dto.HealthResponse{
		Status: dto.HealthDegraded,
		Env:    s.env,
		DB:     dto.ComponentOK,
		Redis:  dto.ComponentOK,
	}
	if s.ready != nil && s.ready() {
		resp.Status = dto.HealthReady
	}

	if s.db == nil {
		resp.DB = dto.ComponentDown
	} else if err := database.Ping(ctx, s.db); err != nil {
		slog.WarnContext(ctx, "database ping failed", slog.String("error", err.Error()))
		resp.DB = dto.ComponentDown
	}

	if s.redis == nil {
		resp.Redis = dto.ComponentDown
	} else if err := s.redis.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "redis ping failed", slog.String("error", err.Error()))
		resp.Redis = dto.ComponentDown
	}

	return resp
}
