package palette

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// baseColors maps mood keywords to base colors. Order matters: the first
// substring match wins.
var baseColors = []struct {
	keyword string
	color   string
}{
	{"calm", "#a8d5e2"},
	{"serene", "#d5e2a8"},
	{"bold", "#e2a8d5"},
	{"energetic", "#e2d5a8"},
	{"minimalist", "#e8e8e8"},
	{"clean", "#ffffff"},
	{"warm", "#e2a8a8"},
	{"cozy", "#d5a8e2"},
	{"earth", "#a8e2a8"},
	{"pastel", "#f0d0e0"},
	{"vibrant", "#a8a8e2"},
	{"modern", "#a8e2d5"},
	{"vintage", "#e2c0a8"},
	{"natural", "#c0e2a8"},
}

// fontCategories maps style keywords to heading/subheading/body triplets.
var fontCategories = []struct {
	keyword string
	fonts   []string
}{
	{"modern", []string{"Montserrat", "Roboto", "Inter"}},
	{"elegant", []string{"Playfair Display", "Cormorant Garamond", "Libre Baskerville"}},
	{"minimalist", []string{"Helvetica Neue", "Open Sans", "Work Sans"}},
	{"creative", []string{"Poppins", "Quicksand", "Comfortaa"}},
	{"vintage", []string{"Abril Fatface", "Lora", "Merriweather"}},
	{"bold", []string{"Raleway", "Oswald", "Bebas Neue"}},
	{"playful", []string{"Pacifico", "Caveat", "Amatic SC"}},
}

const (
	defaultBaseColor = "#a8d5e2"
	channelShift     = 30
)

var defaultFonts = []string{"Montserrat", "Open Sans", "Roboto"}

// LocalService derives palettes from fixed lookup tables without any
// network traffic.
type LocalService struct{}

// NewLocal constructs the table-backed palette service.
func NewLocal() LocalService {
	return LocalService{}
}

// Derive matches the prompt against the keyword tables and expands the base
// color into a five-color complementary palette.
func (LocalService) Derive(_ context.Context, prompt string) (Palette, error) {
	lowered := strings.ToLower(prompt)

	base := defaultBaseColor
	for _, entry := range baseColors {
		if strings.Contains(lowered, entry.keyword) {
			base = entry.color
			break
		}
	}

	fonts := defaultFonts
	for _, entry := range fontCategories {
		if strings.Contains(lowered, entry.keyword) {
			fonts = entry.fonts
			break
		}
	}

	colors, err := complementary(base)
	if err != nil {
		return Palette{}, fmt.Errorf("expand palette: %w", err)
	}

	return Palette{
		BaseColor:    base,
		ColorPalette: colors,
		Fonts:        append([]string(nil), fonts...),
	}, nil
}

// complementary builds the five-color palette: the base, three single-channel
// warm/green/blue shifts, and a darker shade.
func complementary(base string) ([]string, error) {
	r, g, b, err := parseHex(base)
	if err != nil {
		return nil, err
	}

	return []string{
		base,
		shiftColor(r, g, b, channelShift, 0, 0),
		shiftColor(r, g, b, 0, channelShift, 0),
		shiftColor(r, g, b, 0, 0, channelShift),
		shiftColor(r, g, b, -channelShift, -channelShift, -channelShift),
	}, nil
}

func parseHex(color string) (int, int, int, error) {
	clean := strings.TrimPrefix(color, "#")
	if len(clean) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", color)
	}
	r, err := strconv.ParseInt(clean[0:2], 16, 0)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", color)
	}
	g, err := strconv.ParseInt(clean[2:4], 16, 0)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", color)
	}
	b, err := strconv.ParseInt(clean[4:6], 16, 0)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", color)
	}
	return int(r), int(g), int(b), nil
}

func shiftColor(r, g, b, dr, dg, db int) string {
	return fmt.Sprintf("#%02x%02x%02x", clamp(r+dr), clamp(g+dg), clamp(b+db))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
