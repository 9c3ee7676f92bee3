package llm

import (
	"fmt"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

// Message is the role/content pair accepted by chat-completion APIs.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessages prepends the system preamble and maps history onto the three
// roles chat APIs accept. Persisted tool entries become system context.
func buildMessages(preamble string, history []model.Entry) []Message {
	messages := make([]Message, 0, len(history)+1)
	if preamble != "" {
		messages = append(messages, Message{Role: string(model.RoleSystem), Content: preamble})
	}
	for _, e := range history {
		switch e.Role {
		case model.RoleUser, model.RoleAssistant, model.RoleSystem:
			messages = append(messages, Message{Role: string(e.Role), Content: e.Content})
		case model.RoleTool:
			name := e.ToolName
			if name == "" {
				name = "tool"
			}
			messages = append(messages, Message{
				Role:    string(model.RoleSystem),
				Content: fmt.Sprintf("Tool context: %s\n%s", name, e.Content),
			})
		default:
			messages = append(messages, Message{Role: string(model.RoleSystem), Content: e.Content})
		}
	}
	return messages
}

// observations returns the tool observations folded into history for this turn.
func observations(history []model.Entry) []model.Entry {
	var out []model.Entry
	for _, e := range history {
		if e.Role == model.RoleSystem && e.ToolName != "" {
			out = append(out, e)
		}
	}
	return out
}
