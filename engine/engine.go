// Package engine contains the turn orchestrator: the single entry point that
// processes one inbound customer message into one committed state mutation.
// A turn runs synchronously inside the conversation's per-id critical
// section — load, escalation short-circuit, routing, workflow execution,
// persistence — so no interleaved mutation is possible while the blocking
// classification and tool calls are in flight.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/escalate"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/router"
	"github.com/hupe1980/supportmesh/tool"
	"github.com/hupe1980/supportmesh/workflow"
)

// Inbound is one customer message entering the engine. Attachments are
// opaque URLs stored and forwarded, never fetched. Customer, when present,
// merges non-empty identity fields into the conversation before routing.
type Inbound struct {
	Content     string
	Attachments []string
	Customer    *core.CustomerInfo
}

// Turn is the result of processing one inbound message.
type Turn struct {
	ConversationID string
	Reply          string
	AgentKey       string
	Intent         string
	WorkflowStep   string
	Escalated      bool
	Traces         []core.ToolTrace
}

// Options configure an Engine.
type Options struct {
	Store       core.ConversationStore
	Registry    *workflow.Registry
	Completer   model.Completer
	Tools       []tool.Tool
	Escalations *escalate.Manager
	Logger      logging.Logger

	// ToolTimeout is the per-action ceiling applied by each turn's tracer.
	ToolTimeout time.Duration
}

// Engine orchestrates turns. Construct once, share across goroutines; all
// per-conversation mutable state lives in the store.
type Engine struct {
	store       core.ConversationStore
	registry    *workflow.Registry
	router      *router.Router
	completer   model.Completer
	tools       []tool.Tool
	escalations *escalate.Manager
	logger      logging.Logger
	toolTimeout time.Duration
}

// New creates an engine. Store, Registry and Completer are required; the
// escalation manager and logger default sensibly.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Escalations: escalate.NewManager(),
		Logger:      logging.NoOpLogger{},
		ToolTimeout: 20 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		return nil, errors.New("engine: conversation store is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("engine: workflow registry is required")
	}
	if opts.Completer == nil {
		return nil, errors.New("engine: completer is required")
	}

	return &Engine{
		store:       opts.Store,
		registry:    opts.Registry,
		router:      router.New(opts.Registry, opts.Completer),
		completer:   opts.Completer,
		tools:       opts.Tools,
		escalations: opts.Escalations,
		logger:      opts.Logger,
		toolTimeout: opts.ToolTimeout,
	}, nil
}

// Registry returns the workflow registry (for introspection and tests).
func (e *Engine) Registry() *workflow.Registry { return e.registry }

// GetConversation returns the committed document for id.
func (e *Engine) GetConversation(ctx context.Context, id string) (*core.ConversationState, error) {
	return e.store.Get(ctx, id)
}

// HandleMessage processes one inbound message for a conversation and returns
// the turn result. The whole turn executes inside the store's per-id critical
// section; concurrent messages for the same id serialize in arrival order.
// Only a persistence failure aborts the turn (surfaced as *StateStoreError);
// every other failure resolves inside the turn, worst case as the standard
// escalation notice.
func (e *Engine) HandleMessage(ctx context.Context, conversationID string, in Inbound) (*Turn, error) {
	var turn *Turn
	_, err := e.store.Update(ctx, conversationID, func(state *core.ConversationState) error {
		turn = e.runTurn(ctx, state, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// runTurn executes the turn against the working state copy. It never returns
// an error: failures either resolve to a workflow branch or escalate.
func (e *Engine) runTurn(ctx context.Context, state *core.ConversationState, in Inbound) *Turn {
	log := logging.WithConversation(e.logger, state.ConversationID)

	// Absorbing terminal state: no routing, no workflow, no tool calls. The
	// only permitted mutation is appending the canned notice.
	if state.IsEscalated {
		notice := e.escalations.Notice()
		state.AppendMessage(core.NewMessage(core.RoleAgent, notice, nil))
		log.Info("turn short-circuited, conversation escalated")
		return &Turn{
			ConversationID: state.ConversationID,
			Reply:          notice,
			WorkflowStep:   state.WorkflowStep,
			Escalated:      true,
		}
	}

	if in.Customer != nil {
		mergeCustomer(&state.CustomerInfo, *in.Customer)
	}

	userMsg := core.NewMessage(core.RoleUser, in.Content, in.Attachments)
	state.AppendMessage(userMsg)

	tracer := tool.NewTracer(func(o *tool.TracerOptions) {
		o.Timeout = e.toolTimeout
		o.Logger = log
	})

	decision, err := e.router.Route(ctx, userMsg, state)
	if err != nil {
		log.Warn("routing failed", "error", err.Error())
		return e.escalateTurn(state, tracer, core.ReasonRoutingFailure,
			fmt.Sprintf("router could not resolve a workflow: %v", err),
			"review the conversation and route manually", -1)
	}

	state.Intent = decision.Intent
	state.RoutedAgent = decision.AgentKey
	state.CurrentWorkflow = decision.AgentKey
	turnIdx := state.BeginAgentTurn(decision.AgentKey, decision.Intent, state.WorkflowStep)

	wf, err := e.registry.MustGet(decision.AgentKey)
	if err != nil {
		return e.escalateTurn(state, tracer, core.ReasonRoutingFailure, err.Error(),
			"register the missing workflow", turnIdx)
	}

	start := ""
	if decision.Resumed {
		start = state.WorkflowStep
	}

	tc := workflow.NewTurnContext(ctx, workflow.TurnContextConfig{
		State:     state,
		Message:   userMsg,
		Workflow:  decision.AgentKey,
		Depth:     0,
		Tracer:    tracer,
		Tools:     e.tools,
		Completer: e.completer,
		Logger:    log,
		Delegate:  e.delegate,
	})

	outcome, err := wf.Run(tc, start)
	if err != nil {
		log.Error("workflow failed", "workflow", decision.AgentKey, "error", err.Error())
		return e.escalateTurn(state, tracer, core.ReasonWorkflowError,
			fmt.Sprintf("workflow %s failed: %v", decision.AgentKey, err),
			"review the failing step and reply manually", turnIdx)
	}

	var reply string
	escalated := false
	switch outcome.Kind {
	case workflow.OutcomeAsk, workflow.OutcomeRespond:
		state.WorkflowStep = outcome.Step
		reply = outcome.Reply
	case workflow.OutcomeEscalate:
		esc := outcome.Escalation
		state.WorkflowStep = "escalated"
		e.escalations.Escalate(state, esc.Reason, esc.Context, esc.RecommendedAction)
		reply = e.escalations.Notice()
		escalated = true
	}

	state.AppendMessage(core.NewMessage(core.RoleAgent, reply, nil))
	state.AgentTurnHistory[turnIdx].ToolTraces = tracer.Traces()

	return &Turn{
		ConversationID: state.ConversationID,
		Reply:          reply,
		AgentKey:       decision.AgentKey,
		Intent:         decision.Intent,
		WorkflowStep:   state.WorkflowStep,
		Escalated:      escalated,
		Traces:         tracer.Traces(),
	}
}

// escalateTurn latches the terminal state for failures outside workflow
// branch logic (routing failures, workflow defects). turnIdx is the agent
// turn record to attach traces to, or -1 when ownership was never
// established.
func (e *Engine) escalateTurn(state *core.ConversationState, tracer *tool.Tracer, reason, detail, action string, turnIdx int) *Turn {
	state.WorkflowStep = "escalated"
	e.escalations.Escalate(state, reason, detail, action)
	notice := e.escalations.Notice()
	state.AppendMessage(core.NewMessage(core.RoleAgent, notice, nil))
	if turnIdx >= 0 && turnIdx < len(state.AgentTurnHistory) {
		state.AgentTurnHistory[turnIdx].ToolTraces = tracer.Traces()
	}
	return &Turn{
		ConversationID: state.ConversationID,
		Reply:          notice,
		AgentKey:       state.RoutedAgent,
		Intent:         state.Intent,
		WorkflowStep:   state.WorkflowStep,
		Escalated:      true,
		Traces:         tracer.Traces(),
	}
}

func mergeCustomer(dst *core.CustomerInfo, src core.CustomerInfo) {
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.CustomerID != "" {
		dst.CustomerID = src.CustomerID
	}
}
