package moodboard

import "github.com/jumanahhhh/moodboard-gen/internal/imagegen"

// Record is a finished mood board as persisted: image references, the
// synthesized prompt, the filters in effect, and the save timestamp in
// Unix milliseconds. Records are never mutated, only replaced or deleted.
type Record struct {
	ID        string           `json:"id,omitempty"`
	Images    []string         `json:"images"`
	Prompt    string           `json:"prompt"`
	Filters   imagegen.Filters `json:"filters"`
	Timestamp int64            `json:"timestamp"`
}
