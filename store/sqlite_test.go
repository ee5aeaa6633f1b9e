package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Update(ctx, "conv-1", func(state *core.ConversationState) error {
		state.CustomerInfo.Email = "jo@example.com"
		state.AppendMessage(core.NewMessage(core.RoleUser, "where is my order?", []string{"https://img/1.png"}))
		state.SetSlot("order_id", "43189")
		state.SetInternal("lookup_failures", 1)
		state.BeginAgentTurn("wismo", "wismo", "")
		return nil
	})
	require.NoError(t, err)

	state, err := s.Get(ctx, "conv-1")
	require.NoError(t, err)

	assert.Equal(t, "jo@example.com", state.CustomerInfo.Email)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, []string{"https://img/1.png"}, state.Messages[0].Attachments)
	v, _ := state.Slot("order_id")
	assert.Equal(t, "43189", v)
	// internal counters survive the JSON round-trip through float64
	assert.Equal(t, 1, state.IntInternal("lookup_failures"))
	require.Len(t, state.AgentTurnHistory, 1)
	assert.Equal(t, "wismo", state.AgentTurnHistory[0].Agent)
}

func TestSQLite_GetUnknownReturnsDefault(t *testing.T) {
	s := openTestDB(t)

	state, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "nope", state.ConversationID)
	assert.Empty(t, state.Messages)
}

func TestSQLite_MutatorErrorCommitsNothing(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Update(ctx, "conv-1", func(state *core.ConversationState) error {
		state.AppendMessage(core.NewMessage(core.RoleUser, "first", nil))
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("turn failed")
	_, err = s.Update(ctx, "conv-1", func(state *core.ConversationState) error {
		state.AppendMessage(core.NewMessage(core.RoleUser, "second", nil))
		return boom
	})
	require.ErrorIs(t, err, boom)

	state, err := s.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "first", state.Messages[0].Content)
}

func TestSQLite_EscalationFlagPersisted(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Update(ctx, "conv-1", func(state *core.ConversationState) error {
		state.IsEscalated = true
		state.Escalation = &core.EscalationSummary{Reason: "lookup_failed"}
		return nil
	})
	require.NoError(t, err)

	state, err := s.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.True(t, state.IsEscalated)
	require.NotNil(t, state.Escalation)
	assert.Equal(t, "lookup_failed", state.Escalation.Reason)
}

func TestSQLite_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "support.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	_, err = s.Update(ctx, "conv-1", func(state *core.ConversationState) error {
		state.AppendMessage(core.NewMessage(core.RoleUser, "persist me", nil))
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen: migrations are idempotent, data survives.
	s2, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	state, err := s2.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "persist me", state.Messages[0].Content)
}

func TestSQLite_ConcurrentSameIDSerializes(t *testing.T) {
	s := openTestDB(t)
	const n = 20

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
	assert.Len(t, state.Messages, n)
}
