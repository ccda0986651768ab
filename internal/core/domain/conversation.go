package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies one agent run
type RunID string

// MessageRole defines who authored a chat message sent to a model
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ChatMessage is one message in the rendered model prompt
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// TurnKind tags the variant held by a ConversationTurn
type TurnKind string

const (
	TurnUser       TurnKind = "user"
	TurnThought    TurnKind = "thought"
	TurnToolResult TurnKind = "tool_result"
	TurnSystemNote TurnKind = "system_note"
)

// ConversationTurn is one history entry. Kind selects which payload field is set:
// Text for user and system_note, Thought for thought, Invocation+Result for tool_result.
type ConversationTurn struct {
	Seq        int             `json:"seq"`
	Kind       TurnKind        `json:"kind"`
	Text       string          `json:"text,omitempty"`
	Thought    *AgentThought   `json:"thought,omitempty"`
	Invocation *ToolInvocation `json:"invocation,omitempty"`
	Result     *ToolResult     `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func UserTurn(text string) ConversationTurn {
	return ConversationTurn{Kind: TurnUser, Text: text}
}

func ThoughtTurn(t AgentThought) ConversationTurn {
	return ConversationTurn{Kind: TurnThought, Thought: &t}
}

func ToolResultTurn(inv ToolInvocation, res ToolResult) ConversationTurn {
	return ConversationTurn{Kind: TurnToolResult, Invocation: &inv, Result: &res}
}

func SystemNoteTurn(text string) ConversationTurn {
	return ConversationTurn{Kind: TurnSystemNote, Text: text}
}

var (
	ErrRunNotFound = errors.New("run not found")
)

// NewRunID generates a run ID (run-<uuid>)
func NewRunID() RunID {
	return RunID("run-" + uuid.NewString())
}
