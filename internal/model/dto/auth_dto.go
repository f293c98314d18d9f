package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Tier     string `json:"tier" binding:"omitempty,oneof=free pro enterprise"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// AuthResponse 注册和登录共用的响应
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	Tier        string `json:"tier"`
}
