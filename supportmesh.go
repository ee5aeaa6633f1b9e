// Package supportmesh provides a high-level façade over the turn engine and
// its collaborators (conversation store, specialist workflows, commerce tools,
// model adapter, escalation manager & logging) for building customer-support
// conversation automation. Most applications interact with this package by:
//  1. Creating a SupportMesh via New() (optionally overriding the defaults)
//  2. Feeding customer messages to HandleMessage per conversation id
//  3. Inspecting the returned Turn (reply text, owning workflow, traces)
//
// All defaults are safe for local development and testing: an in-memory
// conversation store, the built-in commerce backend, the full specialist
// workflow set, and a mock model. Production deployments supply the SQLite
// store, an HTTP commerce client, a real model adapter and a structured
// logger.
package supportmesh

import (
	"context"
	"time"

	"github.com/hupe1980/supportmesh/agents"
	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/engine"
	"github.com/hupe1980/supportmesh/escalate"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/store"
	"github.com/hupe1980/supportmesh/tool"
	"github.com/hupe1980/supportmesh/workflow"
)

// Options configures the SupportMesh instance.
type Options struct {
	// Store persists conversation documents. Defaults to in-memory.
	Store core.ConversationStore

	// Registry holds the specialist workflows. Defaults to the full built-in
	// set (wismo, refund, order_change, subscription, discount, account,
	// product_qa, feedback).
	Registry *workflow.Registry

	// Completer is the generation/classification collaborator. Defaults to
	// the deterministic mock.
	Completer model.Completer

	// Tools is the external action set. Defaults to the in-memory commerce
	// backend's tools.
	Tools []tool.Tool

	// Escalations overrides the escalation manager (e.g. custom notice text).
	Escalations *escalate.Manager

	// Logger defaults to NoOp.
	Logger logging.Logger

	// ToolTimeout bounds each external action call. Zero keeps the engine
	// default.
	ToolTimeout time.Duration
}

// SupportMesh is the high-level façade aggregating the engine and its
// collaborators.
type SupportMesh struct {
	engine *engine.Engine
}

// New creates a SupportMesh with optional overrides. Any unset collaborator
// is initialized with its in-memory default.
func New(optFns ...func(o *Options)) (*SupportMesh, error) {
	opts := Options{
		Store:     store.NewMemory(),
		Completer: model.NewMock(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = workflow.NewRegistry()
		agents.RegisterAll(opts.Registry)
	}
	if opts.Tools == nil {
		opts.Tools = commerce.NewBackend().Tools()
	}
	if opts.Escalations == nil {
		opts.Escalations = escalate.NewManager(func(o *escalate.Options) {
			o.Logger = opts.Logger
		})
	}

	eng, err := engine.New(func(o *engine.Options) {
		o.Store = opts.Store
		o.Registry = opts.Registry
		o.Completer = opts.Completer
		o.Tools = opts.Tools
		o.Escalations = opts.Escalations
		o.Logger = opts.Logger
		if opts.ToolTimeout > 0 {
			o.ToolTimeout = opts.ToolTimeout
		}
	})
	if err != nil {
		return nil, err
	}
	return &SupportMesh{engine: eng}, nil
}

// HandleMessage processes one customer message for a conversation.
func (s *SupportMesh) HandleMessage(ctx context.Context, conversationID string, in engine.Inbound) (*engine.Turn, error) {
	return s.engine.HandleMessage(ctx, conversationID, in)
}

// GetConversation returns the committed document for a conversation id.
func (s *SupportMesh) GetConversation(ctx context.Context, id string) (*core.ConversationState, error) {
	return s.engine.GetConversation(ctx, id)
}

// Engine exposes the underlying engine for advanced integrations.
func (s *SupportMesh) Engine() *engine.Engine { return s.engine }
