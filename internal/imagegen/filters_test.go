package imagegen

import "testing"

func TestDecorate(t *testing.T) {
	cases := []struct {
		name    string
		filters Filters
		want    string
	}{
		{
			name:    "warm subtle messy",
			filters: Filters{ColorTheme: ThemeWarm, Vibe: 0.0, Layout: LayoutMessy},
			want:    "forest, warm color theme, subtle mood, dynamic composition",
		},
		{
			name:    "max vibe is intense",
			filters: Filters{ColorTheme: ThemeWarm, Vibe: 1.0, Layout: LayoutMessy},
			want:    "forest, warm color theme, intense mood, dynamic composition",
		},
		{
			name:    "all theme omits color clause",
			filters: Filters{ColorTheme: ThemeAll, Vibe: 0.5, Layout: LayoutBalanced},
			want:    "forest, moderate mood, balanced composition",
		},
		{
			name:    "organized composition",
			filters: Filters{ColorTheme: ThemeDark, Vibe: 0.9, Layout: LayoutOrganized},
			want:    "forest, dark color theme, strong mood, organized composition",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decorate("forest", tc.filters)
			if got != tc.want {
				t.Errorf("Decorate: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMoodWordBreakpoints(t *testing.T) {
	cases := []struct {
		vibe float64
		want string
	}{
		{0.0, "subtle"},
		{0.33, "subtle"},
		{0.34, "moderate"},
		{0.5, "moderate"},
		{0.66, "moderate"},
		{0.67, "strong"},
		{0.99, "strong"},
		{1.0, "intense"},
	}
	for _, tc := range cases {
		got := Filters{Vibe: tc.vibe}.MoodWord()
		if got != tc.want {
			t.Errorf("MoodWord(%v): got %q, want %q", tc.vibe, got, tc.want)
		}
	}
}

func TestFiltersValidate(t *testing.T) {
	if err := DefaultFilters().Validate(); err != nil {
		t.Errorf("default filters should validate: %v", err)
	}
	if err := (Filters{ColorTheme: "neon", Vibe: 0.5, Layout: LayoutMessy}).Validate(); err == nil {
		t.Error("expected error for unknown color theme")
	}
	if err := (Filters{ColorTheme: ThemeAll, Vibe: 1.2, Layout: LayoutMessy}).Validate(); err == nil {
		t.Error("expected error for vibe out of range")
	}
	if err := (Filters{ColorTheme: ThemeAll, Vibe: 0.5, Layout: "spiral"}).Validate(); err == nil {
		t.Error("expected error for unknown layout")
	}
}
