package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/manthysbr/expense-agent/internal/core/schema"
)

// FailureKind classifies a failed ToolResult.
type FailureKind string

const (
	FailureUnknownTool   FailureKind = "unknown_tool"
	FailureInvalidInput  FailureKind = "invalid_tool_input"
	FailureToolExecution FailureKind = "tool_execution_failure"
)

// ToolResult is the uniform outcome of running a tool. It is fed back to the model.
type ToolResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Failure FailureKind    `json:"failure,omitempty"`
}

// ToolSucceeded builds a successful result.
func ToolSucceeded(message string, data map[string]any) ToolResult {
	return ToolResult{Success: true, Message: message, Data: data}
}

// ToolFailed builds a failed result of the given kind.
func ToolFailed(kind FailureKind, message string) ToolResult {
	return ToolResult{Success: false, Message: message, Failure: kind}
}

// Validatable is implemented by tool argument types with rules a schema cannot express.
type Validatable interface {
	Validate() error
}

// Tool is a named, schema-typed operation the agent can invoke.
type Tool struct {
	Name        string
	Description string
	InputSchema *schema.Schema

	bind func(args map[string]any) (any, error)
	run  func(ctx context.Context, bound any) (ToolResult, error)
}

// NewTypedTool builds a Tool whose arguments are the Go type T. The input schema is
// reflected from T; arguments are validated against it and decoded into T before fn
// runs.
func NewTypedTool[T any](name, description string, fn func(ctx context.Context, args T) (ToolResult, error)) (*Tool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %s: nil function", name)
	}

	raw, err := schema.Reflect[T]()
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	compiled, err := schema.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	t := &Tool{
		Name:        name,
		Description: description,
		InputSchema: compiled,
	}
	t.bind = func(args map[string]any) (any, error) {
		if err := compiled.Validate(args); err != nil {
			return nil, err
		}
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode arguments: %w", err)
		}
		var typed T
		if err := json.Unmarshal(data, &typed); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		if v, ok := any(&typed).(Validatable); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return typed, nil
	}
	t.run = func(ctx context.Context, bound any) (ToolResult, error) {
		return fn(ctx, bound.(T))
	}
	return t, nil
}

// MustTypedTool is like NewTypedTool but panics on error.
func MustTypedTool[T any](name, description string, fn func(ctx context.Context, args T) (ToolResult, error)) *Tool {
	t, err := NewTypedTool(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// Bind validates raw arguments and returns the typed value the tool runs with. Top-level
// null arguments count as absent. Failures wrap ErrInvalidToolInput.
func (t *Tool) Bind(args map[string]any) (any, error) {
	cleaned := make(map[string]any, len(args))
	for k, v := range args {
		if v != nil {
			cleaned[k] = v
		}
	}
	bound, err := t.bind(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToolInput, err.Error())
	}
	return bound, nil
}

// Run executes the tool with a value returned by Bind.
func (t *Tool) Run(ctx context.Context, bound any) (ToolResult, error) {
	return t.run(ctx, bound)
}

// ToolRegistry maps tool names to descriptors. Registration happens during start-up;
// once sealed the registry is read-only and safe for concurrent lookups.
type ToolRegistry struct {
	tools  map[string]*Tool
	sealed atomic.Bool
}

// NewToolRegistry creates a registry holding the given tools.
func NewToolRegistry(tools ...*Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{
		tools: make(map[string]*Tool),
	}
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool to the registry
func (r *ToolRegistry) Register(tool *Tool) error {
	if r.sealed.Load() {
		return ErrRegistrySealed
	}
	if tool == nil || tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Seal stops further registration.
func (r *ToolRegistry) Seal() {
	r.sealed.Store(true)
}

// Lookup returns a tool by name
func (r *ToolRegistry) Lookup(name string) (*Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool, nil
}

// List returns all registered tools ordered by name
func (r *ToolRegistry) List() []*Tool {
	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Names returns the registered tool names in order.
func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, tool := range r.List() {
		names = append(names, tool.Name)
	}
	return names
}

// FormatToolsForPrompt lists each tool as "- name: description" followed by its input
// schema on the next line.
func (r *ToolRegistry) FormatToolsForPrompt() string {
	var b strings.Builder
	for _, tool := range r.List() {
		fmt.Fprintf(&b, "- %s: %s\n  input schema: %s\n", tool.Name, tool.Description, tool.InputSchema.JSON())
	}
	return b.String()
}
