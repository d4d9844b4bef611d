// Package llm provides the text-generation collaborator interface and
// its Anthropic-backed implementation, with retry and response caching
// for slow or unreliable calls.
package llm

import "context"

// Options tunes a single completion call.
type Options struct {
	// Model overrides the client's default model when non-empty.
	Model string
	// MaxTokens caps the response length. Zero means the client default.
	MaxTokens int
	// System is an optional system prompt.
	System string
}

// Completer is the narrow interface the kernel consumes for contract
// generation and the ensemble oracle. Implementations are assumed
// slow and unreliable; callers route every call through the retry and
// cache path.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}
