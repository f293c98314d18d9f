package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
}

func newGeminiCompleter(ctx context.Context, apiKey, modelName string, temperature float32) (*geminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &geminiCompleter{
		client:      client,
		model:       modelName,
		temperature: temperature,
	}, nil
}

// Complete 系统提示走 SystemInstruction，其余按轮次转换为 Content
func (g *geminiCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	system, contents := toGeminiContents(messages)

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return result.Text(), nil
}

func toGeminiContents(messages []Message) (string, []*genai.Content) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = m.Content
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return system, contents
}
