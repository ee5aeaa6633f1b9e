package core

import (
	"errors"
	"fmt"
)

// Escalation reasons produced by the core itself. Workflows add their own
// (e.g. "lookup_failed", "refund_failed") through their Escalate branches.
const (
	ReasonRoutingFailure       = "routing_failure"
	ReasonMissingRequiredField = "missing_required_field"
	ReasonWorkflowError        = "workflow_error"
)

// ErrClassificationFailure is returned by the router when the classification
// collaborator is unavailable or produced an unrecognized label. The turn
// orchestrator treats it as an immediate escalation trigger.
var ErrClassificationFailure = errors.New("classification failure")

// Delegation bound violations. Both are checked before any tool call runs.
var (
	ErrDelegationDepth = errors.New("delegation depth exceeded")
	ErrSelfDelegation  = errors.New("workflow may not delegate to itself")
)

// StateStoreError wraps a persistence failure. It is fatal for the current
// turn; the previously committed document is guaranteed intact.
type StateStoreError struct {
	Op             string
	ConversationID string
	Err            error
}

func (e *StateStoreError) Error() string {
	return fmt.Sprintf("state store %s failed for conversation %s: %v", e.Op, e.ConversationID, e.Err)
}

func (e *StateStoreError) Unwrap() error { return e.Err }

// NewStateStoreError wraps err with the failing operation and conversation id.
func NewStateStoreError(op, conversationID string, err error) *StateStoreError {
	return &StateStoreError{Op: op, ConversationID: conversationID, Err: err}
}
