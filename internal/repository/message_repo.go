package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/career_compass/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append 写入一条消息并刷新会话的 updated_at，两者在同一事务内完成。
// 时间戳由服务端生成；并发写同一会话时 updated_at 以最后一次写入为准。
func (r *MessageRepository) Append(ctx context.Context, sessionID int64, role, content string) (*model.ChatMessage, error) {
	msg := &model.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg.CreatedAt = time.Now()
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatSession{}).
			Where("id = ?", sessionID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ListBySessionID 按创建时间正序返回，时间相同时按 ID 排序
func (r *MessageRepository) ListBySessionID(ctx context.Context, sessionID int64) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}
