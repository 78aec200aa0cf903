package moodboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/jumanahhhh/moodboard-gen/internal/imagegen"
)

// PlacedImage pairs an image reference with its geometry cell.
type PlacedImage struct {
	Image string `json:"image"`
	Cell  Cell   `json:"cell"`
}

// Assembler renders image sets under a layout policy and drives filtered
// regeneration. It remembers the current filters so a subsequent save
// captures what the user last saw.
type Assembler struct {
	generator imagegen.Generator
	count     int

	mu      sync.Mutex
	prompt  string
	images  []string
	filters imagegen.Filters
}

// NewAssembler wires an assembler for the given prompt and initial images.
func NewAssembler(generator imagegen.Generator, prompt string, images []string, count int) *Assembler {
	if count <= 0 {
		count = 4
	}
	return &Assembler{
		generator: generator,
		count:     count,
		prompt:    prompt,
		images:    append([]string(nil), images...),
		filters:   imagegen.DefaultFilters(),
	}
}

// Render zips each image with the geometry cell at the same index.
func Render(images []string, filters imagegen.Filters) ([]PlacedImage, error) {
	cells, err := CellsFor(filters.Layout, len(images))
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", filters.Layout, err)
	}

	placed := make([]PlacedImage, len(images))
	for i, img := range images {
		placed[i] = PlacedImage{Image: img, Cell: cells[i]}
	}
	return placed, nil
}

// Render lays out the assembler's current images under its current filters.
func (a *Assembler) Render() ([]PlacedImage, error) {
	a.mu.Lock()
	images, filters := a.images, a.filters
	a.mu.Unlock()
	return Render(images, filters)
}

// Regenerate requests a fresh image set with the filter-rewritten prompt,
// re-renders, and adopts the filters as current state.
func (a *Assembler) Regenerate(ctx context.Context, filters imagegen.Filters) ([]PlacedImage, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	prompt := a.prompt
	a.mu.Unlock()

	images, err := imagegen.Regenerate(ctx, a.generator, prompt, filters, a.count)
	if err != nil {
		return nil, err
	}

	placed, err := Render(images, filters)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.images = images
	a.filters = filters
	a.mu.Unlock()

	return placed, nil
}

// Snapshot returns the current images, prompt, and filters for saving.
func (a *Assembler) Snapshot() ([]string, string, imagegen.Filters) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.images...), a.prompt, a.filters
}
