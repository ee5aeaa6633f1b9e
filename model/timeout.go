package model

import (
	"context"
	"time"

	"github.com/hupe1980/supportmesh/core"
)

// WithTimeout wraps a Completer so every call carries a deadline. A zero or
// negative timeout returns the completer unchanged.
func WithTimeout(c Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return c
	}
	return &timeoutCompleter{inner: c, timeout: timeout}
}

type timeoutCompleter struct {
	inner   Completer
	timeout time.Duration
}

func (t *timeoutCompleter) Classify(ctx context.Context, system string, labels []string, messages []core.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Classify(ctx, system, labels, messages)
}

func (t *timeoutCompleter) Generate(ctx context.Context, system string, messages []core.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, system, messages)
}
