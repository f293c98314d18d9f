package llm

import (
	"github.com/qs3c/career_compass/internal/model"
)

// MaxHistoryPairs 每次生成最多携带的历史轮数
const MaxHistoryPairs = 10

// Pair 一问一答
type Pair struct {
	User      string
	Assistant string
}

// BuildHistory 按时间顺序把消息配成问答对。
// 只有紧跟在 user 之后的 assistant 才成对，其余落单的消息（包括末尾未回复的提问）丢弃。
func BuildHistory(messages []*model.ChatMessage) []Pair {
	pairs := make([]Pair, 0, len(messages)/2)

	var pending *model.ChatMessage
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleUser:
			pending = msg
		case model.RoleAssistant:
			if pending != nil {
				pairs = append(pairs, Pair{User: pending.Content, Assistant: msg.Content})
			}
			pending = nil
		default:
			pending = nil
		}
	}

	return pairs
}

// buildMessages 系统提示 + 最近的历史 + 本次提问
func buildMessages(message string, history []Pair) []Message {
	if len(history) > MaxHistoryPairs {
		history = history[len(history)-MaxHistoryPairs:]
	}

	msgs := make([]Message, 0, len(history)*2+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: SystemPrompt})
	for _, p := range history {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: p.User},
			Message{Role: RoleAssistant, Content: p.Assistant},
		)
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: message})

	return msgs
}
