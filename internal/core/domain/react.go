package domain

import "encoding/json"

// AgentThought is one structured decision from the model. Exactly one branch is
// populated: ToolName+ToolInput when NeedsTool is true, FinalAnswer otherwise.
type AgentThought struct {
	Thought     string         `json:"thought"`
	NeedsTool   bool           `json:"needs_tool"`
	ToolName    string         `json:"tool_name,omitempty"`
	ToolInput   map[string]any `json:"tool_input,omitempty"`
	FinalAnswer string         `json:"final_answer,omitempty"`
}

// Invocation returns the tool request carried by the thought, if any.
func (t AgentThought) Invocation() (ToolInvocation, bool) {
	if !t.NeedsTool {
		return ToolInvocation{}, false
	}
	args := t.ToolInput
	if args == nil {
		args = map[string]any{}
	}
	return ToolInvocation{ToolName: t.ToolName, Arguments: args}, true
}

// MarshalJSON renders only the populated branch, keeping an empty tool_input object.
func (t AgentThought) MarshalJSON() ([]byte, error) {
	if t.NeedsTool {
		input := t.ToolInput
		if input == nil {
			input = map[string]any{}
		}
		return json.Marshal(struct {
			Thought   string         `json:"thought"`
			NeedsTool bool           `json:"needs_tool"`
			ToolName  string         `json:"tool_name"`
			ToolInput map[string]any `json:"tool_input"`
		}{t.Thought, true, t.ToolName, input})
	}
	return json.Marshal(struct {
		Thought     string `json:"thought"`
		NeedsTool   bool   `json:"needs_tool"`
		FinalAnswer string `json:"final_answer"`
	}{t.Thought, false, t.FinalAnswer})
}

// ToolInvocation is a request to run one tool.
type ToolInvocation struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// LoopState is a state of the agent loop.
type LoopState string

const (
	StateReasoning     LoopState = "REASONING"
	StateExecutingTool LoopState = "EXECUTING_TOOL"
	StateDone          LoopState = "DONE"
	StateAborted       LoopState = "ABORTED"
)

// Terminal reports whether the state ends a run.
func (s LoopState) Terminal() bool {
	return s == StateDone || s == StateAborted
}
