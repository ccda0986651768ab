package services

import (
	"strings"

	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/schema"
)

// agentThoughtSchema is the contract every model completion must satisfy. The two
// branches selected by needs_tool are mutually exclusive; a populated field from the
// other branch is rejected, null counts as absent.
var agentThoughtSchema = schema.MustCompile(map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []any{"thought", "needs_tool"},
	"properties": map[string]any{
		"thought":      map[string]any{"type": "string"},
		"needs_tool":   map[string]any{"type": "boolean"},
		"tool_name":    map[string]any{"type": []any{"string", "null"}},
		"tool_input":   map[string]any{"type": []any{"object", "null"}},
		"final_answer": map[string]any{"type": []any{"string", "null"}},
	},
	"if": map[string]any{
		"properties": map[string]any{"needs_tool": map[string]any{"const": true}},
	},
	"then": map[string]any{
		"required": []any{"tool_name", "tool_input"},
		"properties": map[string]any{
			"tool_name":    map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
			"tool_input":   map[string]any{"type": "object"},
			"final_answer": map[string]any{"type": "null"},
		},
	},
	"else": map[string]any{
		"required": []any{"final_answer"},
		"properties": map[string]any{
			"final_answer": map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
			"tool_name":    map[string]any{"type": "null"},
			"tool_input":   map[string]any{"type": "null"},
		},
	},
})

// AgentThoughtSchema returns the JSON Schema document model output is validated against.
func AgentThoughtSchema() map[string]any {
	return agentThoughtSchema.Raw()
}

// ParseAgentThought validates raw model text against the thought schema and builds an
// AgentThought. Surrounding whitespace is ignored; anything else outside the JSON object
// is a failure. Errors are *domain.MalformedOutputError.
func ParseAgentThought(raw string) (domain.AgentThought, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.AgentThought{}, &domain.MalformedOutputError{Raw: raw, Reason: "empty output"}
	}

	doc, err := schema.Decode([]byte(text))
	if err != nil {
		return domain.AgentThought{}, &domain.MalformedOutputError{Raw: raw, Reason: "output is not a single JSON object: " + err.Error()}
	}
	if err := agentThoughtSchema.Validate(doc); err != nil {
		return domain.AgentThought{}, &domain.MalformedOutputError{Raw: raw, Reason: err.Error()}
	}

	// The validated document already carries the right shapes; numbers stay
	// json.Number so out-of-range argument values reach the tool's own validation.
	obj := doc.(map[string]any)
	thought := domain.AgentThought{
		Thought:   obj["thought"].(string),
		NeedsTool: obj["needs_tool"].(bool),
	}
	if thought.NeedsTool {
		thought.ToolName = obj["tool_name"].(string)
		thought.ToolInput, _ = obj["tool_input"].(map[string]any)
		if thought.ToolInput == nil {
			thought.ToolInput = map[string]any{}
		}
	} else {
		thought.FinalAnswer = obj["final_answer"].(string)
	}
	return thought, nil
}
