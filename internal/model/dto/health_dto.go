package dto

const (
	HealthReady    = "ready"
	HealthDegraded = "degraded"
	ComponentOK    = "ok"
	ComponentDown  = "down"
)

// HealthResponse 健康检查结果，接口本身始终返回 200
type HealthResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
}
