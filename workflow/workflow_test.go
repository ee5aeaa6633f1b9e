package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/tool"
)

func newTestContext(t *testing.T, message string) *TurnContext {
	t.Helper()
	state := core.NewConversationState("conv-1")
	msg := core.NewMessage(core.RoleUser, message, nil)
	state.AppendMessage(msg)
	return NewTurnContext(context.Background(), TurnContextConfig{
		State:   state,
		Message: msg,
		Tracer:  tool.NewTracer(),
	})
}

func TestRun_GotoChainEndsInRespond(t *testing.T) {
	w := New("test", "test workflow").
		Step("a", func(tc *TurnContext) (StepResult, error) {
			tc.State.SetSlot("visited", "a")
			return Goto{Step: "b"}, nil
		}).
		Step("b", func(tc *TurnContext) (StepResult, error) {
			return Respond{Text: "done", Resolution: "resolved"}, nil
		}).
		Entry("a")

	out, err := w.Run(newTestContext(t, "hi"), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRespond, out.Kind)
	assert.Equal(t, "done", out.Reply)
	assert.Equal(t, "resolved", out.Step)
}

func TestRun_AskSuspendsWithResumeStep(t *testing.T) {
	w := New("test", "").
		Step("entry", func(tc *TurnContext) (StepResult, error) {
			return Ask{Prompt: "which order?", Resume: "await"}, nil
		}).
		Step("await", func(tc *TurnContext) (StepResult, error) {
			return Respond{Text: "thanks", Resolution: "resolved"}, nil
		}).
		Entry("entry")

	out, err := w.Run(newTestContext(t, "hi"), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAsk, out.Kind)
	assert.Equal(t, "which order?", out.Reply)
	assert.Equal(t, "await", out.Step)

	// Resuming starts at the persisted step, not the entry.
	out, err = w.Run(newTestContext(t, "#43189"), "await")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRespond, out.Kind)
}

func TestRun_AskWithUnknownResumeIsAnError(t *testing.T) {
	w := New("test", "").
		Step("entry", func(tc *TurnContext) (StepResult, error) {
			return Ask{Prompt: "?", Resume: "nonexistent"}, nil
		}).
		Entry("entry")

	_, err := w.Run(newTestContext(t, "hi"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRun_EscalateCarriesSummary(t *testing.T) {
	w := New("test", "").
		Step("entry", func(tc *TurnContext) (StepResult, error) {
			return Escalate{Reason: "lookup_failed", Context: "twice", RecommendedAction: "check manually"}, nil
		}).
		Entry("entry")

	out, err := w.Run(newTestContext(t, "hi"), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeEscalate, out.Kind)
	require.NotNil(t, out.Escalation)
	assert.Equal(t, "lookup_failed", out.Escalation.Reason)
}

func TestRun_StepErrorSurfaces(t *testing.T) {
	boom := errors.New("no such tool")
	w := New("test", "").
		Step("entry", func(tc *TurnContext) (StepResult, error) {
			return nil, boom
		}).
		Entry("entry")

	_, err := w.Run(newTestContext(t, "hi"), "")
	require.ErrorIs(t, err, boom)
}

func TestRun_UnknownStartFallsBackToEntry(t *testing.T) {
	w := New("test", "").
		Step("entry", func(tc *TurnContext) (StepResult, error) {
			return Respond{Text: "from entry", Resolution: "resolved"}, nil
		}).
		Entry("entry")

	// "resolved" is a resolution tag, never a step; Run starts at the entry.
	out, err := w.Run(newTestContext(t, "hi"), "resolved")
	require.NoError(t, err)
	assert.Equal(t, "from entry", out.Reply)
}

func TestRun_CycleExhaustsBudget(t *testing.T) {
	w := New("test", "").
		Step("a", func(tc *TurnContext) (StepResult, error) { return Goto{Step: "b"}, nil }).
		Step("b", func(tc *TurnContext) (StepResult, error) { return Goto{Step: "a"}, nil }).
		Entry("a")

	_, err := w.Run(newTestContext(t, "hi"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget")
}

func TestHasStep(t *testing.T) {
	w := New("test", "").
		Step("entry", nil).
		Step("awaiting_order_id", nil).
		Entry("entry")

	assert.True(t, w.HasStep("awaiting_order_id"))
	assert.False(t, w.HasStep("resolved"))
	assert.False(t, w.HasStep("escalated"))
}

func TestRegistry_KeysSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(New("zeta", "z"))
	r.Register(New("alpha", "a"))
	r.Register(New("mid", "m"))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Keys())

	_, ok := r.Get("alpha")
	assert.True(t, ok)
	_, err := r.MustGet("missing")
	assert.Error(t, err)
}
