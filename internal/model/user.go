package model

import (
	"time"
)

// Tier 订阅等级，决定限流档位
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

type User struct {
	ID           int64         `gorm:"primaryKey" json:"id"`
	Email        string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"size:255;not null" json:"-"`
	Tier         Tier          `gorm:"size:20;not null;default:free" json:"tier"`
	CreatedAt    time.Time     `json:"created_at"`
	Sessions     []ChatSession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}
