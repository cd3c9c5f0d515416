package llm

import (
	"context"
	"errors"
)

var ErrEmptyOutput = errors.New("model returned no output")

// Prompt is a single completion request. Zero-valued sampling fields leave the provider default.
type Prompt struct {
	System      string
	User        string
	Temperature *float64
	MaxTokens   int
	TopP        *float64
	TopK        int
	Stop        []string
}

type Provider interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}

func Float(v float64) *float64 {
	return &v
}
