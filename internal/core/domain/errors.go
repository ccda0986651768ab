package domain

import (
	"errors"
	"fmt"
)

// Loop-level and tool-level error kinds. Tool-level kinds are absorbed into a failed
// ToolResult; loop-level kinds end a run.
var (
	ErrMalformedOutput   = errors.New("malformed model output")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrInvalidToolInput  = errors.New("invalid tool input")
	ErrToolExecution     = errors.New("tool execution failed")
	ErrStepLimitExceeded = errors.New("step limit exceeded")
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrDuplicateTool     = errors.New("duplicate tool")
	ErrRegistrySealed    = errors.New("tool registry is sealed")
)

// MalformedOutputError keeps the offending model text for diagnostics.
type MalformedOutputError struct {
	Raw    string
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedOutput, e.Reason)
}

func (e *MalformedOutputError) Unwrap() error {
	return ErrMalformedOutput
}
