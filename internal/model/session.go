package model

import (
	"time"
)

const DefaultSessionTitle = "Career Session"

type ChatSession struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	UserID    int64         `gorm:"not null;index" json:"user_id"`
	Title     string        `gorm:"size:160;not null" json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `gorm:"index" json:"updated_at"`
	Messages  []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
