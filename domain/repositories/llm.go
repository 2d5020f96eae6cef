package repositories

import "context"

// LargeLanguageModel abstracts the remote text-generation provider used for
// message conversion.
type LargeLanguageModel interface {
	// Generate sends a single prompt and returns the model's reply.
	Generate(ctx context.Context, prompt string) (string, error)
}
