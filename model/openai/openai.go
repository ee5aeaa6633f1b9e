// Package openai adapts the OpenAI Chat Completions API to the model.Completer
// interface. Calls are non-streaming: the orchestrator blocks on the
// collaborator boundary for the duration of the turn.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
)

// Options configure the OpenAI completer. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Completer wraps the OpenAI Chat Completions API behind model.Completer.
type Completer struct {
	client *openai.Client
	opts   Options
}

var _ model.Completer = (*Completer)(nil)

// New creates a completer using the default client (API key from env).
func New(optFns ...func(o *Options)) *Completer {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a completer from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Completer {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Completer{client: client, opts: opts}
}

// Generate implements model.Completer.
func (c *Completer) Generate(ctx context.Context, system string, messages []core.Message) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(system, messages))
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify implements model.Completer. The label contract is enforced here by
// normalizing the completion; the router still rejects anything outside the
// enumeration.
func (c *Completer) Classify(ctx context.Context, system string, labels []string, messages []core.Message) (string, error) {
	prompt := fmt.Sprintf(
		"%s\n\nRespond with exactly one of the following labels and nothing else: %s",
		system, strings.Join(labels, ", "),
	)
	text, err := c.Generate(ctx, prompt, messages)
	if err != nil {
		return "", err
	}
	label := strings.ToLower(strings.TrimSpace(text))
	for _, l := range labels {
		if label == l {
			return l, nil
		}
	}
	return label, nil
}

func (c *Completer) buildParams(system string, messages []core.Message) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, m := range messages {
		switch m.Role {
		case core.RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case core.RoleAgent:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Messages:            msgs,
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}
}
