package workflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/tool"
)

// DelegateFunc is injected by the engine; it runs another workflow's entry
// against a scoped state view and returns only its generated text. Depth is
// the nesting level of the requested call (1 for a top-level workflow
// delegating once).
type DelegateFunc func(tc *TurnContext, target, subMessage string, depth int) (string, error)

// TurnContext carries everything a step needs for one turn: the turn-owned
// state copy, the inbound message, the traced tool surface, the generation
// collaborator, and the delegation hook. It is confined to the single
// goroutine executing the turn.
type TurnContext struct {
	Context  context.Context
	State    *core.ConversationState
	Message  core.Message
	Logger   logging.Logger
	Workflow string
	Depth    int

	tracer    *tool.Tracer
	tools     map[string]tool.Tool
	completer model.Completer
	delegate  DelegateFunc
}

// TurnContextConfig bundles the collaborators the engine wires into a turn.
type TurnContextConfig struct {
	State     *core.ConversationState
	Message   core.Message
	Workflow  string
	Depth     int
	Tracer    *tool.Tracer
	Tools     []tool.Tool
	Completer model.Completer
	Logger    logging.Logger
	Delegate  DelegateFunc
}

// NewTurnContext constructs a turn context.
func NewTurnContext(ctx context.Context, cfg TurnContextConfig) *TurnContext {
	if cfg.Logger == nil {
		cfg.Logger = logging.NoOpLogger{}
	}
	toolsByName := make(map[string]tool.Tool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		toolsByName[t.Name()] = t
	}
	return &TurnContext{
		Context:   ctx,
		State:     cfg.State,
		Message:   cfg.Message,
		Logger:    cfg.Logger,
		Workflow:  cfg.Workflow,
		Depth:     cfg.Depth,
		tracer:    cfg.Tracer,
		tools:     toolsByName,
		completer: cfg.Completer,
		delegate:  cfg.Delegate,
	}
}

// Invoke calls the named external action through the turn's tracer. Exactly
// one trace is appended whatever the outcome; the error (if any) is the
// tool's own, never swallowed.
func (tc *TurnContext) Invoke(name string, args map[string]any) (tool.Result, error) {
	t, ok := tc.tools[name]
	if !ok {
		return tool.Result{}, fmt.Errorf("tool %q not available", name)
	}
	result, _, err := tc.tracer.Invoke(tc.Context, t, args)
	return result, err
}

// Generate asks the collaborator for free-form reply text grounded on the
// conversation transcript.
func (tc *TurnContext) Generate(system string) (string, error) {
	if tc.completer == nil {
		return "", fmt.Errorf("completer not configured")
	}
	return tc.completer.Generate(tc.Context, system, tc.State.Messages)
}

// Delegate synchronously invokes another workflow's entry with subMessage and
// returns its text. The engine rejects depth > 1 and self-delegation before
// any tool call runs.
func (tc *TurnContext) Delegate(target, subMessage string) (string, error) {
	if tc.delegate == nil {
		return "", fmt.Errorf("delegation not configured")
	}
	return tc.delegate(tc, target, subMessage, tc.Depth+1)
}

// Traces returns the traces recorded so far this turn.
func (tc *TurnContext) Traces() []core.ToolTrace { return tc.tracer.Traces() }

// Tracer exposes the turn tracer for the engine's delegation mechanism.
func (tc *TurnContext) Tracer() *tool.Tracer { return tc.tracer }

// Completer exposes the collaborator for the engine's delegation mechanism.
func (tc *TurnContext) Completer() model.Completer { return tc.completer }

// Tools returns the turn's action set, for scoping a delegated context.
func (tc *TurnContext) Tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(tc.tools))
	for _, t := range tc.tools {
		out = append(out, t)
	}
	return out
}
