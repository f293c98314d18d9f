package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qs3c/career_compass/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderArk    = "ark"

	// 未配置模型时的回复来源
	ProviderFallback = "fallback"
	ModelNone        = "none"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrGeneration          = errors.New("reply generation failed")
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
)

// MissingCredentialError 所选 provider 缺少密钥
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is missing for provider %s", e.EnvVar, e.Provider)
}

// Message 与具体 SDK 无关的对话消息
type Message struct {
	Role    string
	Content string
}

// Completer 各 provider 的适配层
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Engine 启动时选定一个 provider，之后只读
type Engine struct {
	completer Completer
	provider  string
	model     string
	timeout   time.Duration
}

// NewEngine 根据配置创建引擎。
// 缺少密钥返回 *MissingCredentialError，未知 provider 返回 ErrUnsupportedProvider。
func NewEngine(ctx context.Context, cfg config.LLMConfig) (*Engine, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var (
		completer Completer
		modelName string
		err       error
	)

	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, &MissingCredentialError{Provider: provider, EnvVar: "OPENAI_API_KEY"}
		}
		modelName = cfg.OpenAIModel
		completer, err = newEinoCompleter(ctx, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, modelName, "", cfg.Temperature)
	case ProviderArk:
		if cfg.ArkAPIKey == "" {
			return nil, &MissingCredentialError{Provider: provider, EnvVar: "ARK_API_KEY"}
		}
		modelName = cfg.ArkModel
		completer, err = newEinoCompleter(ctx, cfg.ArkBaseURL, cfg.ArkAPIKey, modelName, cfg.ArkRegion, cfg.Temperature)
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, &MissingCredentialError{Provider: provider, EnvVar: "GEMINI_API_KEY"}
		}
		modelName = cfg.GeminiModel
		completer, err = newGeminiCompleter(ctx, cfg.GeminiAPIKey, modelName, cfg.Temperature)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}

	return NewEngineWithCompleter(completer, provider, modelName, time.Duration(cfg.RequestTimeout)*time.Second), nil
}

// NewEngineWithCompleter 使用现成的 Completer 创建引擎
func NewEngineWithCompleter(completer Completer, provider, modelName string, timeout time.Duration) *Engine {
	return &Engine{
		completer: completer,
		provider:  provider,
		model:     modelName,
		timeout:   timeout,
	}
}

func (e *Engine) Provider() string {
	return e.provider
}

func (e *Engine) Model() string {
	return e.model
}

// GenerateReply 生成回复，所有失败都包装为 ErrGeneration
func (e *Engine) GenerateReply(ctx context.Context, message string, history []Pair) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	reply, err := e.completer.Complete(ctx, buildMessages(message, history))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrGeneration, e.provider, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: %s returned empty content", ErrGeneration, e.provider)
	}

	return reply, nil
}

// FallbackReply 未配置模型时的固定回复，指明缺少的环境变量
func FallbackReply(err error) string {
	envVar := "OPENAI_API_KEY or GEMINI_API_KEY"

	var missing *MissingCredentialError
	if errors.As(err, &missing) {
		envVar = missing.EnvVar
	}

	return fmt.Sprintf("I can help you plan your career roadmap, but model credentials are not configured yet. Set %s and try again.", envVar)
}
