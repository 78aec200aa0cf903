// Package imagegen submits prompts to external image synthesis backends and
// collects the resulting image references.
package imagegen

import (
	"context"
	"fmt"
)

// Generator produces image references (URLs or data URLs) for a prompt.
// Backends accept only single-image requests internally; Generate loops to
// collect count images and returns them in request order.
type Generator interface {
	Generate(ctx context.Context, prompt string, count int) ([]string, error)
}

// GenerationError is a typed failure carrying the backend's message.
// Callers do not retry automatically; retry is a fresh user action.
type GenerationError struct {
	Backend string
	Status  int
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: generation failed with status %d", e.Backend, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

// Regenerate rewrites the prompt with the filter clauses and generates a
// fresh image set.
func Regenerate(ctx context.Context, g Generator, prompt string, filters Filters, count int) ([]string, error) {
	return g.Generate(ctx, Decorate(prompt, filters), count)
}
