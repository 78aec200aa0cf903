// Package palette derives color palettes and font suggestions from free-text
// prompts, either locally or by delegating to a remote inference endpoint.
package palette

import "context"

// Palette bundles a base color, an ordered color set, and font suggestions.
// Fonts are conventionally three families: heading, subheading, body.
type Palette struct {
	BaseColor    string   `json:"base_color"`
	ColorPalette []string `json:"color_palette"`
	Fonts        []string `json:"fonts"`
}

// Service derives a palette from a prompt or joined keyword string.
// Implementations are pure functions of their input and interchangeable.
type Service interface {
	Derive(ctx context.Context, prompt string) (Palette, error)
}
