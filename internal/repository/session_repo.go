package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/career_compass/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 为用户新建一个会话
func (r *SessionRepository) Create(ctx context.Context, userID int64) (*model.ChatSession, error) {
	session := &model.ChatSession{
		UserID: userID,
		Title:  model.DefaultSessionTitle,
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// GetByID 不做归属校验，调用方负责比较 UserID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByUserID 按最近更新时间倒序
func (r *SessionRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.ChatSession, error) {
	var sessions []*model.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&sessions).Error
	return sessions, err
}

// CountByUserID 获取用户的会话数
func (r *SessionRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ListInactiveBefore 最后更新时间早于 cutoff 的会话
func (r *SessionRepository) ListInactiveBefore(ctx context.Context, cutoff time.Time) ([]*model.ChatSession, error) {
	var sessions []*model.ChatSession
	err := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Find(&sessions).Error
	return sessions, err
}

// DeleteByIDs 删除会话及其消息，返回删除的会话数
func (r *SessionRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id IN ?", ids).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&model.ChatSession{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
