package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
)

func TestMemory_GetUnknownReturnsDefault(t *testing.T) {
	s := NewMemory()

	state, err := s.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", state.ConversationID)
	assert.Empty(t, state.Messages)
	assert.False(t, state.IsEscalated)
}

func TestMemory_UpdateCommits(t *testing.T) {
	s := NewMemory()

	_, err := s.Update(context.Background(), "conv-1", func(state *core.ConversationState) error {
		state.AppendMessage(core.NewMessage(core.RoleUser, "hello", nil))
		return nil
	})
	require.NoError(t, err)

	state, err := s.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "hello", state.Messages[0].Content)
}

func TestMemory_MutatorErrorCommitsNothing(t *testing.T) {
	s := NewMemory()

	_, err := s.Update(context.Background(), "conv-1", func(state *core.ConversationState) error {
		state.AppendMessage(core.NewMessage(core.RoleUser, "first", nil))
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("step blew up")
	_, err = s.Update(context.Background(), "conv-1", func(state *core.ConversationState) error {
		state.AppendMessage(core.NewMessage(core.RoleUser, "half-applied", nil))
		return boom
	})
	require.ErrorIs(t, err, boom)

	state, err := s.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 1, "failed mutation must not leak into the committed document")
	assert.Equal(t, "first", state.Messages[0].Content)
}

func TestMemory_ReturnedStateIsACopy(t *testing.T) {
	s := NewMemory()

	_, err := s.Update(context.Background(), "conv-1", func(state *core.ConversationState) error {
		state.SetSlot("order_id", "43189")
		return nil
	})
	require.NoError(t, err)

	state, err := s.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	state.SetSlot("order_id", "tampered")
	state.AppendMessage(core.NewMessage(core.RoleUser, "tampered", nil))

	fresh, err := s.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	v, _ := fresh.Slot("order_id")
	assert.Equal(t, "43189", v)
	assert.Empty(t, fresh.Messages)
}

func TestMemory_ConcurrentSameIDSerializes(t *testing.T) {
	s := NewMemory()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(context.Background(), "conv-1", func(state *core.ConversationState) error {
				state.AppendMessage(core.NewMessage(core.RoleUser, "ping", nil))
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := s.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Len(t, state.Messages, n, "every concurrent write must land exactly once")
}

func TestMemory_DistinctIDsIndependent(t *testing.T) {
	s := NewMemory()

	for _, id := range []string{"a", "b"} {
		_, err := s.Update(context.Background(), id, func(state *core.ConversationState) error {
			state.AppendMessage(core.NewMessage(core.RoleUser, "for "+id, nil))
			return nil
		})
		require.NoError(t, err)
	}

	a, _ := s.Get(context.Background(), "a")
	b, _ := s.Get(context.Background(), "b")
	assert.Equal(t, "for a", a.Messages[0].Content)
	assert.Equal(t, "for b", b.Messages[0].Content)
}
