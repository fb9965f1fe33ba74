// Package ai holds the LLM clients bot seats use to write alibi sentences.
package ai

import "context"

type Provider interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error)
}
