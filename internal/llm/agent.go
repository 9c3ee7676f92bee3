package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/citation"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/tools"
)

// AgentName identifies the tool-calling provider.
const AgentName = "agent"

const (
	agentMaxRounds   = 5
	agentTemperature = 0.2
	agentInstruction = " Use tools when helpful. Include short citations (links) when you rely on web research."
)

// AgentConfig configures the tool-calling provider.
type AgentConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Tools        []tools.FunctionTool
}

type agentProvider struct {
	client       *openai.Client
	model        string
	systemPrompt string
	tools        map[string]tools.FunctionTool
	definitions  []openai.Tool
}

// NewAgentProvider returns a provider that lets the model call function tools
// for up to five rounds before answering.
func NewAgentProvider(cfg AgentConfig) Provider {
	p := &agentProvider{
		client:       newOpenAIClient(cfg.APIKey, cfg.BaseURL, nil),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt + agentInstruction,
		tools:        make(map[string]tools.FunctionTool, len(cfg.Tools)),
	}
	for _, t := range cfg.Tools {
		p.tools[t.Name()] = t
		p.definitions = append(p.definitions, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return p
}

func (p *agentProvider) Name() string { return AgentName }

func (p *agentProvider) Generate(ctx context.Context, req *Request) (*Result, error) {
	messages := toOpenAIMessages(buildMessages(p.systemPrompt, req.Messages))
	var observed []model.ToolObservation

	for round := 0; round < agentMaxRounds; round++ {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       p.model,
			Messages:    messages,
			Temperature: agentTemperature,
			Tools:       p.definitions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: agent completion failed: %v", ErrProviderUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%w: agent returned no choices", ErrProviderUnavailable)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &Result{Text: msg.Content, Provider: AgentName, Observations: agentCitations(observed, msg.Content)}, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output, ok := p.runTool(ctx, req.OwnerID, call)
			if urls := citation.Extract(output, citation.DefaultMax); ok && len(urls) > 0 {
				observed = append(observed, model.ToolObservation{ToolName: tools.WebSearchName, Content: strings.Join(urls, "\n")})
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}
	return nil, fmt.Errorf("%w: agent did not answer within %d rounds", ErrProviderUnavailable, agentMaxRounds)
}

// runTool executes a tool call. Failures are reported to the model as text
// and ok is false.
func (p *agentProvider) runTool(ctx context.Context, ownerID string, call openai.ToolCall) (output string, ok bool) {
	tool, found := p.tools[call.Function.Name]
	if !found {
		return fmt.Sprintf("Unknown tool: %s", call.Function.Name), false
	}
	slog.Debug("Agent calling tool", "tool", call.Function.Name)
	output, err := tool.Execute(ctx, ownerID, json.RawMessage(call.Function.Arguments))
	if err != nil {
		slog.Warn("Agent tool call failed", "tool", call.Function.Name, "error", err)
		return fmt.Sprintf("Tool %s failed.", call.Function.Name), false
	}
	return output, true
}

// agentCitations reports URLs seen in tool outputs, or failing that the URLs
// the answer itself links to.
func agentCitations(observed []model.ToolObservation, answer string) []model.ToolObservation {
	if len(observed) > 0 {
		return observed
	}
	urls := citation.Extract(answer, citation.DefaultMax)
	if len(urls) == 0 {
		return nil
	}
	return []model.ToolObservation{{ToolName: tools.AssistantLinksName, Content: strings.Join(urls, "\n")}}
}
