package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/model"
	"github.com/qs3c/career_compass/internal/model/dto"
	"github.com/qs3c/career_compass/internal/pkg/llm"
	"github.com/qs3c/career_compass/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrReplyFailed     = errors.New("reply generation failed")
)

// ReplyEngine 已配置的模型，未配置时为 nil
type ReplyEngine interface {
	GenerateReply(ctx context.Context, message string, history []llm.Pair) (string, error)
	Provider() string
	Model() string
}

// SummaryCache 最近会话摘要的写入端
type SummaryCache interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type ChatService struct {
	sessionRepo *repository.SessionRepository
	messageRepo *repository.MessageRepository
	engine      ReplyEngine
	fallback    string
	summaries   SummaryCache
	cfg         config.CacheConfig
}

// NewChatService engine 为 nil 时使用固定回复，engineErr 用于说明缺少的配置
func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	engine ReplyEngine,
	engineErr error,
	summaries SummaryCache,
	cfg config.CacheConfig,
) *ChatService {
	return &ChatService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		engine:      engine,
		fallback:    llm.FallbackReply(engineErr),
		summaries:   summaries,
		cfg:         cfg,
	}
}

// EngineReady 是否配置了模型
func (s *ChatService) EngineReady() bool {
	return s.engine != nil
}

// Chat 处理一轮对话：解析会话、加载历史、生成回复并保存两条消息
func (s *ChatService) Chat(ctx context.Context, user *model.User, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session, err := s.resolveSession(ctx, user, req.SessionID)
	if err != nil {
		return nil, err
	}

	prior, err := s.messageRepo.ListBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := llm.BuildHistory(prior)

	// 先保存提问，生成失败时提问仍然保留
	if _, err := s.messageRepo.Append(ctx, session.ID, model.RoleUser, req.Message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	reply, provider, modelName := s.fallback, llm.ProviderFallback, llm.ModelNone
	if s.engine != nil {
		reply, err = s.engine.GenerateReply(ctx, req.Message, history)
		if err != nil {
			slog.ErrorContext(ctx, "reply generation failed",
				slog.Int64("user_id", user.ID),
				slog.Int64("session_id", session.ID),
				slog.String("provider", s.engine.Provider()),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("%w: %v", ErrReplyFailed, err)
		}
		provider, modelName = s.engine.Provider(), s.engine.Model()
	}

	if _, err := s.messageRepo.Append(ctx, session.ID, model.RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("failed to save reply: %w", err)
	}

	s.writeSummary(user, session.ID, reply)

	return &dto.ChatResponse{
		Reply:     reply,
		Provider:  provider,
		Model:     modelName,
		SessionID: session.ID,
	}, nil
}

// ListSessions 当前用户的会话，最近更新的在前
func (s *ChatService) ListSessions(ctx context.Context, user *model.User) (*dto.SessionListResponse, error) {
	sessions, err := s.sessionRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SessionItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, &dto.SessionItem{
			ID:        session.ID,
			Title:     session.Title,
			CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: session.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return &dto.SessionListResponse{Sessions: items}, nil
}

// resolveSession 未指定（或为 0）时新建，指定时必须存在且属于当前用户
func (s *ChatService) resolveSession(ctx context.Context, user *model.User, sessionID *int64) (*model.ChatSession, error) {
	if sessionID == nil || *sessionID == 0 {
		return s.sessionRepo.Create(ctx, user.ID)
	}

	session, err := s.sessionRepo.GetByID(ctx, *sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// 不属于当前用户时与不存在返回相同结果
	if session.UserID != user.ID {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// writeSummary 异步写入最近会话摘要，失败只记录日志
func (s *ChatService) writeSummary(user *model.User, sessionID int64, reply string) {
	if s.summaries == nil {
		return
	}

	summary := dto.SessionSummary{
		SessionID: sessionID,
		Preview:   truncateRunes(reply, s.cfg.PreviewLength),
		Tier:      string(user.Tier),
	}
	key := summaryKey(user.ID)
	ttl := time.Duration(s.cfg.SummaryTTLSeconds) * time.Second
	timeout := time.Duration(s.cfg.WriteTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.summaries.SetJSON(ctx, key, summary, ttl); err != nil {
			slog.Warn("failed to cache session summary",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func summaryKey(userID int64) string {
	return fmt.Sprintf("session:last:%d", userID)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
