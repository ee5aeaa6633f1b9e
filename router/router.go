// Package router decides which specialist workflow owns an inbound turn. A
// conversation mid-workflow stays with its owner (sticky routing); everything
// else is classified against the registry's fixed key enumeration by the
// generation/classification collaborator.
package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/workflow"
)

// Decision names the workflow owning the turn and the classified intent.
// Resumed is true when sticky routing kept the in-progress workflow, in which
// case Intent carries the previously recorded one.
type Decision struct {
	AgentKey string
	Intent   string
	Resumed  bool
}

// Router is a pure decision function over (message, history, state). It holds
// no mutable state and performs no writes.
type Router struct {
	registry  *workflow.Registry
	completer model.Completer
}

// New constructs a router over the given workflow registry and classifier.
func New(registry *workflow.Registry, completer model.Completer) *Router {
	return &Router{registry: registry, completer: completer}
}

// Route selects the owning workflow for the turn.
//
// If state points at a pending step of a non-escalated workflow — the
// persisted workflow_step names a registered step of current_workflow — the
// same agent key is returned without re-classification, so an ambiguous
// follow-up ("yes", "#1234") cannot be misrouted. Otherwise the message is
// classified; an unavailable collaborator or a label outside the enumeration
// yields core.ErrClassificationFailure.
func (r *Router) Route(ctx context.Context, message core.Message, state *core.ConversationState) (Decision, error) {
	if !state.IsEscalated && r.pendingStep(state) {
		return Decision{AgentKey: state.CurrentWorkflow, Intent: state.Intent, Resumed: true}, nil
	}

	// The orchestrator appends the message to the transcript before routing;
	// only add it here if the caller hasn't.
	history := state.Messages
	if n := len(history); n == 0 || history[n-1].ID != message.ID {
		history = append(history, message)
	}

	labels := r.registry.Keys()
	label, err := r.completer.Classify(ctx, r.systemPrompt(), labels, history)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", core.ErrClassificationFailure, err)
	}

	label = strings.ToLower(strings.TrimSpace(label))
	if _, ok := r.registry.Get(label); !ok {
		return Decision{}, fmt.Errorf("%w: unrecognized label %q", core.ErrClassificationFailure, label)
	}
	return Decision{AgentKey: label, Intent: label}, nil
}

// pendingStep reports whether the persisted position denotes an unresolved
// step. Resolution tags ("resolved" etc.) are never registered step names, so
// they end stickiness naturally.
func (r *Router) pendingStep(state *core.ConversationState) bool {
	if state.CurrentWorkflow == "" || state.WorkflowStep == "" {
		return false
	}
	w, ok := r.registry.Get(state.CurrentWorkflow)
	if !ok {
		return false
	}
	return w.HasStep(state.WorkflowStep)
}

func (r *Router) systemPrompt() string {
	descs := r.registry.Descriptions()
	keys := make([]string, 0, len(descs))
	for k := range descs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("You route customer support messages to specialist agents.\n")
	sb.WriteString("Available agents:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, descs[k])
	}
	return sb.String()
}
