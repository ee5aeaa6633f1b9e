package escalate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
)

func TestEscalate_LatchesOnce(t *testing.T) {
	m := NewManager()
	state := core.NewConversationState("conv-1")

	first := m.Escalate(state, "lookup_failed", "two failures for #43189", "check manually")
	assert.True(t, state.IsEscalated)
	require.NotNil(t, state.Escalation)
	assert.Equal(t, "lookup_failed", state.Escalation.Reason)
	assert.False(t, first.Timestamp.IsZero())

	// A second escalation must not overwrite the original summary.
	second := m.Escalate(state, "workflow_error", "later failure", "ignore")
	assert.Equal(t, "lookup_failed", state.Escalation.Reason)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.Timestamp, second.Timestamp)
}

func TestNotice_Overridable(t *testing.T) {
	m := NewManager()
	assert.Equal(t, DefaultNotice, m.Notice())

	custom := NewManager(func(o *Options) {
		o.Notice = "A human will be with you shortly."
	})
	assert.Equal(t, "A human will be with you shortly.", custom.Notice())
}
