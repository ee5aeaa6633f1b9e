// Package escalate enforces the one-way hand-off to a human. Escalation is an
// absorbing terminal state: the summary is written exactly once, the visible
// notice is fixed text (never agent-composed), and the turn orchestrator
// short-circuits every later message for the conversation.
package escalate

import (
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// DefaultNotice is the canned customer-facing text for an escalated
// conversation. It is deliberately static so no generation failure can leak
// an internal error to the customer.
const DefaultNotice = "I've passed your request to a member of our support team. " +
	"Someone will get back to you shortly — no further action is needed on your side."

// Manager evaluates escalation requests and latches the terminal state.
type Manager struct {
	notice string
	logger logging.Logger
}

// Options configure a Manager.
type Options struct {
	// Notice overrides the canned customer-facing text.
	Notice string
	Logger logging.Logger
}

// NewManager constructs an escalation manager.
func NewManager(optFns ...func(o *Options)) *Manager {
	opts := Options{Notice: DefaultNotice, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{notice: opts.Notice, logger: opts.Logger}
}

// Notice returns the fixed customer-facing hand-off text.
func (m *Manager) Notice() string { return m.notice }

// Escalate sets is_escalated and the summary exactly once. Calling it on an
// already escalated conversation is a no-op returning the existing summary.
func (m *Manager) Escalate(state *core.ConversationState, reason, context, recommendedAction string) core.EscalationSummary {
	if state.IsEscalated && state.Escalation != nil {
		return *state.Escalation
	}

	summary := core.EscalationSummary{
		Reason:            reason,
		Context:           context,
		RecommendedAction: recommendedAction,
		Timestamp:         time.Now().UTC(),
	}
	state.IsEscalated = true
	state.Escalation = &summary
	state.UpdatedAt = summary.Timestamp

	m.logger.Warn("conversation escalated",
		"conversation_id", state.ConversationID,
		"reason", reason,
	)
	return summary
}
