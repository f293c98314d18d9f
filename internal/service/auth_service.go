package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/career_compass/internal/model"
	"github.com/qs3c/career_compass/internal/model/dto"
	"github.com/qs3c/career_compass/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type AuthService struct {
	userRepo *repository.UserRepository
	creds    *CredentialService
}

func NewAuthService(userRepo *repository.UserRepository, creds *CredentialService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		creds:    creds,
	}
}

// Register 用户注册，成功后直接签发令牌
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := s.creds.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tier := model.Tier(req.Tier)
	if !tier.Valid() {
		tier = model.TierFree
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Tier:         tier,
	}

	// 并发注册时由唯一索引兜底
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

// Login 用户登录，邮箱不存在和密码错误返回同一个错误
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.creds.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

// CurrentUser 根据令牌解析当前用户，令牌有效但用户已删除时同样返回 ErrUnauthenticated
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	userID, ok := s.creds.ParseToken(token)
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	token, err := s.creds.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		UserID:      user.ID,
		Tier:        string(user.Tier),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
