package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/career_compass/internal/model"
)

// TestPassword 是 TestUser 默认密码的明文
const TestPassword = "strongpass123"

var (
	seq          atomic.Int64
	testPassHash string
)

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	testPassHash = string(hash)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		Email:        fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), seq.Add(1)),
		PasswordHash: testPassHash,
		Tier:         model.TierFree,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithTier 设置订阅等级
func WithTier(tier model.Tier) func(*model.User) {
	return func(u *model.User) {
		u.Tier = tier
	}
}

// TestSession 创建测试会话
func TestSession(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.ChatSession)) *model.ChatSession {
	t.Helper()

	session := &model.ChatSession{
		UserID: userID,
		Title:  model.DefaultSessionTitle,
	}

	for _, opt := range opts {
		opt(session)
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return session
}

// WithTitle 设置会话标题
func WithTitle(title string) func(*model.ChatSession) {
	return func(s *model.ChatSession) {
		s.Title = title
	}
}

// WithUpdatedAt 设置会话最后更新时间
func WithUpdatedAt(at time.Time) func(*model.ChatSession) {
	return func(s *model.ChatSession) {
		s.CreatedAt = at
		s.UpdatedAt = at
	}
}

// TestMessage 创建测试消息，按调用顺序递增 created_at
func TestMessage(t *testing.T, db *gorm.DB, sessionID int64, role, content string) *model.ChatMessage {
	t.Helper()

	msg := &model.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().Add(time.Duration(seq.Add(1)) * time.Millisecond),
	}

	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}

	return msg
}
