package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/career_compass/config"
	"github.com/qs3c/career_compass/internal/pkg/jwt"
)

// CredentialService 密码哈希与令牌签发/校验
type CredentialService struct {
	secret string
	ttl    time.Duration
	cost   int
}

func NewCredentialService(cfg *config.JWTConfig) *CredentialService {
	return &CredentialService{
		secret: cfg.Secret,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		cost:   bcrypt.DefaultCost,
	}
}

// HashPassword bcrypt 加盐哈希，相同明文每次结果不同
func (s *CredentialService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 哈希格式错误时同样返回 false
func (s *CredentialService) VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueToken 签发访问令牌
func (s *CredentialService) IssueToken(userID int64) (string, error) {
	return jwt.GenerateToken(userID, s.secret, s.ttl)
}

// ParseToken 校验令牌并返回用户 ID。
// 任何失败都只返回 false，调用方不区分缺失、无效和过期。
func (s *CredentialService) ParseToken(token string) (int64, bool) {
	claims, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		return 0, false
	}

	// 有效期以签发时间为准，配置缩短 TTL 后旧令牌随之失效
	if time.Since(claims.IssuedAt.Time) > s.ttl {
		return 0, false
	}

	if claims.UserID <= 0 {
		return 0, false
	}

	return claims.UserID, true
}
