package dto

// ChatRequest 对话请求，session_id 为空时新建会话
type ChatRequest struct {
	Message   string `json:"message" binding:"required,min=2,max=2000"`
	SessionID *int64 `json:"session_id,omitempty"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	Reply     string `json:"reply"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	SessionID int64  `json:"session_id"`
}

// SessionItem 会话列表项
type SessionItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SessionListResponse 会话列表
type SessionListResponse struct {
	Sessions []*SessionItem `json:"sessions"`
}

// SessionSummary 写入缓存的最近会话摘要
type SessionSummary struct {
	SessionID int64  `json:"session_id"`
	Preview   string `json:"preview"`
	Tier      string `json:"tier"`
}
