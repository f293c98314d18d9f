package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/model"
)

// Counter 带过期窗口的共享计数器
type Counter interface {
	IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Decision 一次限流判定的结果
type Decision struct {
	Allowed bool
	Count   int64
	Limit   int
}

// RateLimitService 按订阅等级的固定窗口限流
type RateLimitService struct {
	counter Counter
	window  time.Duration
	timeout time.Duration
	limits  map[model.Tier]int
}

func NewRateLimitService(counter Counter, cfg *config.RateLimitConfig) *RateLimitService {
	limits := make(map[model.Tier]int, len(cfg.Tiers))
	for tier, limit := range cfg.Tiers {
		limits[model.Tier(tier)] = limit
	}

	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}

	return &RateLimitService{
		counter: counter,
		window:  window,
		timeout: timeout,
		limits:  limits,
	}
}

// Window 限流窗口长度
func (s *RateLimitService) Window() time.Duration {
	return s.window
}

// LimitFor 未知等级按 free 计算
func (s *RateLimitService) LimitFor(tier model.Tier) int {
	if limit, ok := s.limits[tier]; ok {
		return limit
	}
	return s.limits[model.TierFree]
}

// Allow 计数并判定是否放行，计数器不可用或超时时放行
func (s *RateLimitService) Allow(ctx context.Context, user *model.User, action string) Decision {
	limit := s.LimitFor(user.Tier)
	key := rateKey(user.ID, action)

	incrCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.counter.IncrWithExpiry(incrCtx, key, s.window)
	if err != nil {
		slog.WarnContext(ctx, "rate limit check skipped",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return Decision{Allowed: true, Limit: limit}
	}

	return Decision{
		Allowed: count <= int64(limit),
		Count:   count,
		Limit:   limit,
	}
}

func rateKey(userID int64, action string) string {
	return fmt.Sprintf("rate:%d:%s", userID, action)
}
