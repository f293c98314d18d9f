package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	LLM          LLMConfig          `mapstructure:"llm"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	AuthThrottle AuthThrottleConfig `mapstructure:"auth_throttle"`
	Cache        CacheConfig        `mapstructure:"cache"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	Env            string   `mapstructure:"env"`
	TrustedProxies []string `mapstructure:"trusted_proxies"` // 为空时不信任任何代理头
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	PoolSize       int    `mapstructure:"pool_size"`
	DialTimeoutMS  int    `mapstructure:"dial_timeout_ms"`
	ReadTimeoutMS  int    `mapstructure:"read_timeout_ms"`
	WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
	MaxRetries     int    `mapstructure:"max_retries"` // -1 关闭重试
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// LLMConfig 启动时只会选择一个 provider
type LLMConfig struct {
	Provider       string  `mapstructure:"provider"` // openai, gemini, ark
	OpenAIAPIKey   string  `mapstructure:"openai_api_key"`
	OpenAIModel    string  `mapstructure:"openai_model"`
	OpenAIBaseURL  string  `mapstructure:"openai_base_url"`
	GeminiAPIKey   string  `mapstructure:"gemini_api_key"`
	GeminiModel    string  `mapstructure:"gemini_model"`
	ArkAPIKey      string  `mapstructure:"ark_api_key"`
	ArkModel       string  `mapstructure:"ark_model"`
	ArkBaseURL     string  `mapstructure:"ark_base_url"`
	ArkRegion      string  `mapstructure:"ark_region"`
	Temperature    float32 `mapstructure:"temperature"`
	RequestTimeout int     `mapstructure:"request_timeout"` // 秒
}

type RateLimitConfig struct {
	WindowSeconds int            `mapstructure:"window_seconds"`
	TimeoutMS     int            `mapstructure:"timeout_ms"` // 单次计数的最长等待，超时放行
	Tiers         map[string]int `mapstructure:"tiers"`
}

type AuthThrottleConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type CacheConfig struct {
	SummaryTTLSeconds int `mapstructure:"summary_ttl_seconds"`
	PreviewLength     int `mapstructure:"preview_length"`
	WriteTimeoutMS    int `mapstructure:"write_timeout_ms"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// 兼容旧部署中使用的环境变量名
var envBindings = map[string]string{
	"server.env":          "APP_ENV",
	"jwt.secret":          "SECRET_KEY",
	"jwt.ttl_seconds":     "TOKEN_TTL_SECONDS",
	"llm.provider":        "LLM_PROVIDER",
	"llm.openai_api_key":  "OPENAI_API_KEY",
	"llm.openai_model":    "OPENAI_MODEL",
	"llm.gemini_api_key":  "GEMINI_API_KEY",
	"llm.gemini_model":    "GEMINI_MODEL",
	"llm.ark_api_key":     "ARK_API_KEY",
	"llm.ark_model":       "ARK_MODEL",
	"llm.request_timeout": "REQUEST_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.env", "development")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "career_compass.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout_ms", 1000)
	v.SetDefault("redis.read_timeout_ms", 500)
	v.SetDefault("redis.write_timeout_ms", 500)
	v.SetDefault("redis.max_retries", 1)

	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.ttl_seconds", 604800)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.gemini_model", "gemini-1.5-flash")
	v.SetDefault("llm.ark_base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("llm.ark_region", "cn-beijing")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.request_timeout", 45)

	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("rate_limit.timeout_ms", 200)
	v.SetDefault("rate_limit.tiers", map[string]int{
		"free":       10,
		"pro":        60,
		"enterprise": 300,
	})

	v.SetDefault("auth_throttle.requests_per_minute", 30)
	v.SetDefault("auth_throttle.burst", 10)

	v.SetDefault("cache.summary_ttl_seconds", 3600)
	v.SetDefault("cache.preview_length", 140)
	v.SetDefault("cache.write_timeout_ms", 500)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
}

// Load 读取配置文件并叠加环境变量，文件不存在时只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	setDefaults(v)

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
