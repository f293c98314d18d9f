package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// einoCompleter 基于 eino ChatModel，OpenAI 兼容接口和火山方舟共用
type einoCompleter struct {
	chatModel model.ChatModel
}

func newEinoCompleter(ctx context.Context, baseURL, apiKey, modelName, region string, temperature float32) (*einoCompleter, error) {
	temp := temperature
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     baseURL,
		Region:      region,
		APIKey:      apiKey,
		Model:       modelName,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	return &einoCompleter{chatModel: chatModel}, nil
}

func (c *einoCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.chatModel.Generate(ctx, toSchemaMessages(messages))
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty response")
	}
	return resp.Content, nil
}

func toSchemaMessages(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}
