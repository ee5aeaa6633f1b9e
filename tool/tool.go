// Package tool defines the external action boundary: the uniform response
// contract every commerce endpoint speaks, the Tool interface workflows act
// through, and the turn-scoped Tracer that records one timed ToolTrace per
// invocation.
package tool

import (
	"context"
	"fmt"
)

// Result is the uniform response contract of every external action.
// Success is the action's own reported outcome; Error carries the action's
// failure description when Success is false. Transport-level failures are
// returned as Go errors by Call, not encoded here.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Tool is a single external action (order lookup, refund, ...). Call blocks
// with a bounded timeout supplied through ctx; implementations must be safe
// for concurrent use across conversations.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, args map[string]any) (Result, error)
}

// Error wraps a failure raised while executing a tool, with a code for
// branch logic ("TIMEOUT", "TRANSPORT", "PANIC", "EXECUTION").
type Error struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewError creates an Error with the given details.
func NewError(tool, message, code string) *Error {
	return &Error{Tool: tool, Message: message, Code: code}
}

// Func adapts a plain function into a Tool.
type Func struct {
	name        string
	description string
	fn          func(ctx context.Context, args map[string]any) (Result, error)
}

// NewFunc wraps fn as a named Tool.
func NewFunc(name, description string, fn func(ctx context.Context, args map[string]any) (Result, error)) *Func {
	return &Func{name: name, description: description, fn: fn}
}

// Name returns the tool identifier recorded in traces.
func (f *Func) Name() string { return f.name }

// Description returns the human-readable action description.
func (f *Func) Description() string { return f.description }

// Call invokes the wrapped function.
func (f *Func) Call(ctx context.Context, args map[string]any) (Result, error) {
	return f.fn(ctx, args)
}
