package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

const systemPromptTemplate = `You are an intelligent expense tracking assistant helping users manage their finances.

Available tools:
{{ .Tools }}
Categories: {{ join ", " .Categories }}

You MUST respond with exactly one JSON object and nothing before or after it.
The object must match this JSON Schema:
{{ .Schema }}

Rules:
1. If you need data or must change the ledger, set "needs_tool" to true and fill "tool_name" and "tool_input".
2. When you can answer, set "needs_tool" to false and fill "final_answer". Leave the tool fields out.
3. Tool results arrive as user messages starting with "Tool '<name>' result:". Use them to answer.
4. If a tool fails, correct the arguments or explain the problem to the user.
5. Use only tool names from the list above.`

var systemPrompt = template.Must(template.New("system").Funcs(sprig.TxtFuncMap()).Parse(systemPromptTemplate))

// PromptCompleter renders the conversation into chat messages and asks the LLM for the
// next thought.
type PromptCompleter struct {
	logger *slog.Logger
	llm    domain.LLMProvider
	system string
}

// NewPromptCompleter renders the system prompt for the given tools once.
func NewPromptCompleter(logger *slog.Logger, llm domain.LLMProvider, tools *domain.ToolRegistry) (*PromptCompleter, error) {
	schemaJSON, err := json.MarshalIndent(AgentThoughtSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal thought schema: %w", err)
	}
	categories := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		categories[i] = string(c)
	}

	var buf bytes.Buffer
	err = systemPrompt.Execute(&buf, map[string]any{
		"Tools":      tools.FormatToolsForPrompt(),
		"Categories": categories,
		"Schema":     string(schemaJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	return &PromptCompleter{logger: logger, llm: llm, system: buf.String()}, nil
}

// SystemPrompt returns the rendered system prompt.
func (c *PromptCompleter) SystemPrompt() string {
	return c.system
}

// Complete implements ModelCompleter.
func (c *PromptCompleter) Complete(ctx context.Context, history []domain.ConversationTurn) (string, error) {
	messages := c.Render(history)
	c.logger.Debug("requesting completion", "messages", len(messages))
	return c.llm.GenerateText(ctx, messages)
}

// Render maps turns to chat messages: thoughts become assistant messages, tool results
// and user input become user messages, system notes stay system messages.
func (c *PromptCompleter) Render(history []domain.ConversationTurn) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: c.system})

	for _, turn := range history {
		switch turn.Kind {
		case domain.TurnUser:
			messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: turn.Text})
		case domain.TurnThought:
			data, err := json.Marshal(turn.Thought)
			if err != nil {
				continue
			}
			messages = append(messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: string(data)})
		case domain.TurnToolResult:
			messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: renderToolResult(turn)})
		case domain.TurnSystemNote:
			messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: turn.Text})
		}
	}
	return messages
}

func renderToolResult(turn domain.ConversationTurn) string {
	name := ""
	if turn.Invocation != nil {
		name = turn.Invocation.ToolName
	}
	data, err := json.Marshal(turn.Result)
	if err != nil {
		return fmt.Sprintf("Tool '%s' result: %s", name, turn.Result.Message)
	}
	return fmt.Sprintf("Tool '%s' result: %s", name, data)
}
