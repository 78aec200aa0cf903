// Package llm wraps the text-completion collaborators used for keyword
// extraction and prompt synthesis.
package llm

import "context"

// ChatMessage represents a generic chat turn in the prompt history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the behaviour required by the conversation engine.
type Client interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage, temperature float64) (string, error)
}

// Complete is a convenience wrapper for the single-prompt call shape.
func Complete(ctx context.Context, c Client, prompt string) (string, error) {
	return c.ChatCompletion(ctx, []ChatMessage{{Role: "user", Content: prompt}}, 0.7)
}
