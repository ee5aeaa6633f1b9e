package core

import "context"

// ConversationStore persists conversation documents keyed by id.
//
// Contract:
//   - Get creates and returns a fresh default document for an unknown id.
//   - Update applies a single atomic read-modify-write: the mutator runs on a
//     working copy inside the id's critical section, and the result is
//     committed only when both the mutator and the write succeed. A failed
//     Update leaves the previously committed document intact and surfaces a
//     *StateStoreError (or the mutator's own error) — never a partial write.
//   - Updates for the same id are strictly serialized in arrival order;
//     updates for different ids proceed in parallel.
//
// Returned documents are deep copies; callers may mutate them freely.
type ConversationStore interface {
	Get(ctx context.Context, conversationID string) (*ConversationState, error)
	Update(ctx context.Context, conversationID string, mutate func(*ConversationState) error) (*ConversationState, error)
}
