package engine

import (
	"fmt"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/workflow"
)

// delegate runs the target workflow's entry step against a scoped view of the
// conversation and returns only the text it produced. Bounds are enforced
// before any side effect: nesting beyond one level and self-delegation are
// rejected up front, so a rejected call never reaches a tool.
//
// The delegated workflow sees a cloned state with the sub-message appended;
// its step/slot mutations are discarded when the call returns. The turn's
// tracer is shared, so tool calls made on behalf of the delegator still land
// in the turn's trace list in invocation order. A delegated workflow asking a
// question or responding both surface as plain text for the delegator to
// weave into its own reply; a delegated escalation surfaces as an error so
// the delegator decides whether to escalate the whole conversation.
func (e *Engine) delegate(parent *workflow.TurnContext, target, subMessage string, depth int) (string, error) {
	if depth > 1 {
		return "", fmt.Errorf("%w: call at depth %d", core.ErrDelegationDepth, depth)
	}
	if target == parent.Workflow {
		return "", fmt.Errorf("%w: %s", core.ErrSelfDelegation, target)
	}

	wf, err := e.registry.MustGet(target)
	if err != nil {
		return "", err
	}

	scoped := parent.State.Clone()
	subMsg := core.NewMessage(core.RoleUser, subMessage, nil)
	scoped.AppendMessage(subMsg)

	log := parent.Logger
	log.Debug("delegating", "from", parent.Workflow, "to", target, "depth", depth)

	tc := workflow.NewTurnContext(parent.Context, workflow.TurnContextConfig{
		State:     scoped,
		Message:   subMsg,
		Workflow:  target,
		Depth:     depth,
		Tracer:    parent.Tracer(),
		Tools:     parent.Tools(),
		Completer: parent.Completer(),
		Logger:    log,
		Delegate:  e.delegate,
	})

	outcome, err := wf.Run(tc, "")
	if err != nil {
		return "", fmt.Errorf("delegated workflow %s: %w", target, err)
	}

	switch outcome.Kind {
	case workflow.OutcomeAsk, workflow.OutcomeRespond:
		return outcome.Reply, nil
	case workflow.OutcomeEscalate:
		return "", fmt.Errorf("delegated workflow %s requested escalation: %s", target, outcome.Escalation.Reason)
	default:
		return "", fmt.Errorf("delegated workflow %s returned unexpected outcome", target)
	}
}
