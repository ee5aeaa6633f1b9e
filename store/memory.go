// Package store provides the conversation document stores: a volatile
// in-memory implementation for tests and demos, and a SQLite-backed one for
// durable single-node deployments. Both serialize writes per conversation id.
package store

import (
	"context"
	"sync"

	"github.com/hupe1980/supportmesh/core"
)

// Memory is a process-local core.ConversationStore. Documents are deep-copied
// on the way in and out so callers can never mutate committed state.
type Memory struct {
	locks *keyedLocks

	mu            sync.RWMutex
	conversations map[string]*core.ConversationState
}

var _ core.ConversationStore = (*Memory)(nil)

// NewMemory constructs an empty in-memory conversation store.
func NewMemory() *Memory {
	return &Memory{
		locks:         newKeyedLocks(),
		conversations: make(map[string]*core.ConversationState),
	}
}

// Get returns a copy of the stored document, creating a fresh default for an
// unknown id.
func (s *Memory) Get(_ context.Context, conversationID string) (*core.ConversationState, error) {
	s.mu.RLock()
	state, ok := s.conversations[conversationID]
	s.mu.RUnlock()
	if ok {
		return state.Clone(), nil
	}
	return core.NewConversationState(conversationID), nil
}

// Update runs mutate on a working copy inside the id's critical section and
// commits the copy only when mutate succeeds.
func (s *Memory) Update(ctx context.Context, conversationID string, mutate func(*core.ConversationState) error) (*core.ConversationState, error) {
	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, core.NewStateStoreError("update", conversationID, err)
	}

	working, err := s.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := mutate(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.conversations[conversationID] = working.Clone()
	s.mu.Unlock()

	return working, nil
}
