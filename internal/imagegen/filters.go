package imagegen

import "fmt"

// Color themes accepted by the filters.
const (
	ThemeAll    = "all"
	ThemeWarm   = "warm"
	ThemeCool   = "cool"
	ThemePastel = "pastel"
	ThemeDark   = "dark"
)

// Layout names accepted by the filters.
const (
	LayoutMessy     = "messy"
	LayoutBalanced  = "balanced"
	LayoutOrganized = "organized"
)

// vibeWords is the ordered mood-intensity vocabulary; Vibe maps into it via
// floor(vibe * 3).
var vibeWords = [4]string{"subtle", "moderate", "strong", "intense"}

// Filters is the user-adjustable generation configuration.
type Filters struct {
	ColorTheme string  `json:"colorTheme"`
	Vibe       float64 `json:"vibe"`
	Layout     string  `json:"layout"`
}

// DefaultFilters returns the initial filter state.
func DefaultFilters() Filters {
	return Filters{ColorTheme: ThemeAll, Vibe: 0.5, Layout: LayoutMessy}
}

// Validate checks the enumerated fields and the vibe range.
func (f Filters) Validate() error {
	switch f.ColorTheme {
	case ThemeAll, ThemeWarm, ThemeCool, ThemePastel, ThemeDark:
	default:
		return fmt.Errorf("unknown color theme %q", f.ColorTheme)
	}
	switch f.Layout {
	case LayoutMessy, LayoutBalanced, LayoutOrganized:
	default:
		return fmt.Errorf("unknown layout %q", f.Layout)
	}
	if f.Vibe < 0 || f.Vibe > 1 {
		return fmt.Errorf("vibe %v out of range [0,1]", f.Vibe)
	}
	return nil
}

// MoodWord resolves the vibe scalar to its discrete adjective.
func (f Filters) MoodWord() string {
	idx := int(f.Vibe * float64(len(vibeWords)-1))
	if idx < 0 {
		idx = 0
	}
	if idx > len(vibeWords)-1 {
		idx = len(vibeWords) - 1
	}
	return vibeWords[idx]
}

// Decorate deterministically rewrites the prompt by appending, in fixed
// order: a color-theme clause (omitted for "all"), a mood-intensity clause,
// and a composition clause keyed by layout name.
func Decorate(prompt string, f Filters) string {
	out := prompt

	if f.ColorTheme != ThemeAll {
		out += fmt.Sprintf(", %s color theme", f.ColorTheme)
	}

	out += fmt.Sprintf(", %s mood", f.MoodWord())

	switch f.Layout {
	case LayoutOrganized:
		out += ", organized composition"
	case LayoutBalanced:
		out += ", balanced composition"
	default:
		out += ", dynamic composition"
	}

	return out
}
