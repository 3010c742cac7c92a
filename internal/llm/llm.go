package llm

import (
	"context"
	"errors"
)

// Agent abstracts the LLM agent runtime: system + user prompt in, markdown
// report out, with the selected tools available during the run.
type Agent interface {
	Run(ctx context.Context, input RunInput) (string, error)
}

// RunInput carries the prompts and the tool keys enabled for this run.
type RunInput struct {
	System string
	User   string
	Tools  []string
}

// ErrEmptyOutput is returned when the agent finished without producing text.
var ErrEmptyOutput = errors.New("agent produced no output")

// ErrNotConfigured is returned by the placeholder agent.
var ErrNotConfigured = errors.New("agent not configured")

// PlaceholderAgent is a stub implementation used when no API key is set.
type PlaceholderAgent struct{}

// Run returns ErrNotConfigured.
func (PlaceholderAgent) Run(ctx context.Context, input RunInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotConfigured
}
