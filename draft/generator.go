// Package draft builds generation prompts for letters and defines the
// external text-generation contract.
package draft

import "context"

// Generator is the external text-generation call. The engine bounds it with
// a deadline via ctx; implementations must honor cancellation. A failure is
// recoverable — the caller may resubmit the same letter.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc is an adapter to use a plain function as a Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
