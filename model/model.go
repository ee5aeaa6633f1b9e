// Package model defines the generation/classification collaborator boundary.
// The engine treats it as an opaque, potentially failing blocking call: it
// returns text, a label out of a fixed enumeration, or an error. Provider
// adapters live in the openai and anthropic subpackages; Mock serves tests
// and the offline demo.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/supportmesh/core"
)

// Completer is the narrow RPC boundary to the language model service.
type Completer interface {
	// Classify picks one label from labels for the latest user message, given
	// the conversation so far. Implementations must return one of labels
	// verbatim; the router rejects anything else.
	Classify(ctx context.Context, system string, labels []string, messages []core.Message) (string, error)

	// Generate produces free-form reply text.
	Generate(ctx context.Context, system string, messages []core.Message) (string, error)
}

// Mock is a deterministic in-memory Completer for tests and the offline REPL.
// Classification falls back to keyword matching against the label set when no
// canned label is registered for the exact message text.
type Mock struct {
	labels    map[string]string
	responses map[string]string
	keywords  map[string][]string

	// Fail, when set, makes every call return this error. Used to exercise
	// collaborator-unavailable paths.
	Fail error
}

// NewMock constructs an empty mock completer with the default keyword table.
func NewMock() *Mock {
	return &Mock{
		labels:    map[string]string{},
		responses: map[string]string{},
		keywords: map[string][]string{
			"wismo":        {"where is my order", "order status", "tracking", "shipped", "delivery"},
			"refund":       {"refund", "money back", "return"},
			"order_change": {"change my order", "wrong address", "update the address", "cancel my order"},
			"subscription": {"subscription", "unsubscribe", "cancel my plan", "pause"},
			"discount":     {"discount", "promo", "coupon", "voucher"},
			"account":      {"my email", "my account", "change my name", "update my details"},
			"product_qa":   {"does it", "is it", "how do i", "compatible", "what is"},
			"feedback":     {"complaint", "feedback", "terrible", "great service", "disappointed"},
		},
	}
}

// AddLabel registers a canned classification for an exact message text.
func (m *Mock) AddLabel(message, label string) { m.labels[strings.ToLower(message)] = label }

// AddResponse registers a canned generation for an exact message text.
func (m *Mock) AddResponse(message, response string) { m.responses[strings.ToLower(message)] = response }

// Classify implements Completer.
func (m *Mock) Classify(_ context.Context, _ string, labels []string, messages []core.Message) (string, error) {
	if m.Fail != nil {
		return "", m.Fail
	}
	text := strings.ToLower(lastUserText(messages))
	if label, ok := m.labels[text]; ok {
		return label, nil
	}
	for _, label := range labels {
		for _, kw := range m.keywords[label] {
			if strings.Contains(text, kw) {
				return label, nil
			}
		}
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("no labels provided")
	}
	return labels[len(labels)-1], nil
}

// Generate implements Completer.
func (m *Mock) Generate(_ context.Context, _ string, messages []core.Message) (string, error) {
	if m.Fail != nil {
		return "", m.Fail
	}
	text := strings.ToLower(lastUserText(messages))
	if resp, ok := m.responses[text]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", lastUserText(messages)), nil
}

func lastUserText(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
