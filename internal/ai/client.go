// Package ai wraps the generative AI backend behind a narrow completion
// interface and turns its output into typed classifications.
package ai

import "context"

// CompletionClient is the capability the classifier needs from a generative
// AI backend: one prompt in, one text completion out. The caller bounds the
// call through ctx.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
