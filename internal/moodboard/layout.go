// Package moodboard arranges generated images into named grid layouts and
// carries the saved-board record type.
package moodboard

import "errors"

// Layout lookup failures. Geometry beyond a table's length is a refusal,
// not an out-of-range access.
var (
	ErrUnknownLayout  = errors.New("unknown layout")
	ErrNotEnoughCells = errors.New("layout does not define enough cells")
)

// Cell is one slot of grid geometry: position, span, and rotation degrees.
type Cell struct {
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Rotation float64 `json:"rotation"`
}

// gridLayouts holds the static geometry tables keyed by layout name.
var gridLayouts = map[string][]Cell{
	"messy": {
		{Row: 1, Col: 1, Width: 2, Height: 2, Rotation: -5},
		{Row: 1, Col: 3, Width: 1, Height: 1, Rotation: 3},
		{Row: 2, Col: 1, Width: 1, Height: 1, Rotation: 2},
		{Row: 2, Col: 2, Width: 2, Height: 2, Rotation: -3},
		{Row: 3, Col: 1, Width: 2, Height: 1, Rotation: 4},
		{Row: 3, Col: 3, Width: 1, Height: 1, Rotation: -2},
	},
	"balanced": {
		{Row: 1, Col: 1, Width: 1, Height: 1},
		{Row: 1, Col: 2, Width: 1, Height: 1},
		{Row: 1, Col: 3, Width: 1, Height: 1},
		{Row: 2, Col: 1, Width: 1, Height: 1},
		{Row: 2, Col: 2, Width: 1, Height: 1},
		{Row: 2, Col: 3, Width: 1, Height: 1},
	},
}

// CellsFor returns the first n cells of the named layout.
func CellsFor(layout string, n int) ([]Cell, error) {
	cells, ok := gridLayouts[layout]
	if !ok {
		return nil, ErrUnknownLayout
	}
	if n > len(cells) {
		return nil, ErrNotEnoughCells
	}
	return cells[:n], nil
}
