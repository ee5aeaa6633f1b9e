package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
)

func messages(texts ...string) []core.Message {
	out := make([]core.Message, 0, len(texts))
	for _, t := range texts {
		out = append(out, core.NewMessage(core.RoleUser, t, nil))
	}
	return out
}

func TestMock_CannedLabelWins(t *testing.T) {
	m := NewMock()
	m.AddLabel("special phrase", "refund")

	label, err := m.Classify(context.Background(), "", []string{"wismo", "refund"}, messages("Special Phrase"))
	require.NoError(t, err)
	assert.Equal(t, "refund", label)
}

func TestMock_KeywordFallback(t *testing.T) {
	m := NewMock()

	label, err := m.Classify(context.Background(), "", []string{"refund", "wismo"}, messages("where is my order please"))
	require.NoError(t, err)
	assert.Equal(t, "wismo", label)
}

func TestMock_FailPropagates(t *testing.T) {
	m := NewMock()
	m.Fail = assert.AnError

	_, err := m.Classify(context.Background(), "", []string{"wismo"}, messages("hi"))
	assert.ErrorIs(t, err, assert.AnError)
	_, err = m.Generate(context.Background(), "", messages("hi"))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMock_GenerateCanned(t *testing.T) {
	m := NewMock()
	m.AddResponse("is it waterproof?", "Yes, IP67.")

	text, err := m.Generate(context.Background(), "sys", messages("Is it waterproof?"))
	require.NoError(t, err)
	assert.Equal(t, "Yes, IP67.", text)
}

func TestWithTimeout_AppliesDeadline(t *testing.T) {
	var sawDeadline bool
	probe := &funcCompleter{
		generate: func(ctx context.Context) (string, error) {
			_, sawDeadline = ctx.Deadline()
			return "ok", nil
		},
	}

	c := WithTimeout(probe, 100)
	_, err := c.Generate(context.Background(), "", nil)
	require.NoError(t, err)
	assert.True(t, sawDeadline)

	// Zero timeout is a pass-through.
	assert.Same(t, probe, WithTimeout(probe, 0).(*funcCompleter))
}

type funcCompleter struct {
	generate func(ctx context.Context) (string, error)
}

func (f *funcCompleter) Classify(ctx context.Context, _ string, _ []string, _ []core.Message) (string, error) {
	return f.generate(ctx)
}

func (f *funcCompleter) Generate(ctx context.Context, _ string, _ []core.Message) (string, error) {
	return f.generate(ctx)
}
