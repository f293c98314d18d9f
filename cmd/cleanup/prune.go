package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/qs3c/career_compass/internal/model"
)

type sessionStore interface {
	ListInactiveBefore(ctx context.Context, cutoff time.Time) ([]*model.ChatSession, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type pruneReport struct {
	Found   int
	Deleted int64
}

// sessionPruner 分批删除长期未活跃的会话
type sessionPruner struct {
	sessions sessionStore
	batch    int
	log      *slog.Logger
}

func (p *sessionPruner) Prune(ctx context.Context, cutoff time.Time, dryRun bool) (*pruneReport, error) {
	stale, err := p.sessions.ListInactiveBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	report := &pruneReport{Found: len(stale)}
	for _, s := range stale {
		p.log.Debug("inactive session",
			slog.Int64("session_id", s.ID),
			slog.Int64("user_id", s.UserID),
			slog.Time("updated_at", s.UpdatedAt),
		)
	}
	if dryRun || len(stale) == 0 {
		return report, nil
	}

	batch := p.batch
	if batch <= 0 {
		batch = len(stale)
	}

	ids := make([]int64, 0, batch)
	for i, s := range stale {
		ids = append(ids, s.ID)
		if len(ids) < batch && i < len(stale)-1 {
			continue
		}

		deleted, err := p.sessions.DeleteByIDs(ctx, ids)
		if err != nil {
			return report, err
		}
		report.Deleted += deleted
		ids = ids[:0]
	}

	return report, nil
}
