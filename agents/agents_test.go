package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"order #43189", "43189"},
		{"#43189", "43189"},
		{"it's 43189 i think", "43189"},
		{"Order Number: #0051022!", "0051022"},
		{"no number here", ""},
		{"too short #123", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractOrderID(tt.text), "input: %q", tt.text)
	}
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "jo@example.com", extractEmail("my new address is jo@example.com thanks"))
	assert.Equal(t, "a.b+c@mail.co.uk", extractEmail("use a.b+c@mail.co.uk"))
	assert.Equal(t, "", extractEmail("no email here"))
}

func TestParseSubscriptionAction(t *testing.T) {
	assert.Equal(t, "cancel", parseSubscriptionAction("please cancel my plan"))
	assert.Equal(t, "pause", parseSubscriptionAction("can you pause it for a month"))
	assert.Equal(t, "resume", parseSubscriptionAction("I'd like to restart my box"))
	assert.Equal(t, "", parseSubscriptionAction("I want to stop my subscription"))
}

func TestRegisterAll(t *testing.T) {
	keys := []string{
		KeyAccount, KeyDiscount, KeyFeedback, KeyOrderChange,
		KeyProductQA, KeyRefund, KeySubscription, KeyWismo,
	}
	r := newRegistry(t)
	assert.Equal(t, keys, r.Keys())
	for _, k := range keys {
		w, ok := r.Get(k)
		assert.True(t, ok)
		assert.True(t, w.HasStep(w.EntryStep()), "entry step of %s must be registered", k)
		assert.NotEmpty(t, w.Description())
	}
}
