package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStabilityGenerateSequentialSingleSampleCalls(t *testing.T) {
	var calls int
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]string{{"base64": "aW1n"}},
		})
	}))
	defer srv.Close()

	c := NewStability("key", "", time.Second).WithBaseURL(srv.URL)
	images, err := c.Generate(context.Background(), "misty forest", 4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if calls != 4 {
		t.Errorf("calls: got %d, want 4 single-image requests", calls)
	}
	if len(images) != 4 {
		t.Fatalf("images: got %d, want 4", len(images))
	}
	if images[0] != "data:image/png;base64,aW1n" {
		t.Errorf("images[0]: got %q, want data URL", images[0])
	}
	if got := gotBody["samples"]; got != float64(1) {
		t.Errorf("samples: got %v, want 1", got)
	}
	if got := gotBody["style_preset"]; got != "photographic" {
		t.Errorf("style_preset: got %v, want photographic", got)
	}
	if got := gotBody["cfg_scale"]; got != float64(7) {
		t.Errorf("cfg_scale: got %v, want 7", got)
	}
}

func TestStabilityGenerateSurfacesTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid prompt"}`))
	}))
	defer srv.Close()

	c := NewStability("key", "", time.Second).WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), "x", 2)
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type: got %T, want *GenerationError", err)
	}
	if genErr.Status != http.StatusBadRequest || genErr.Message != "invalid prompt" {
		t.Errorf("error: got %+v, want backend status and message", genErr)
	}
}

func TestRegenerateDecoratesPrompt(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TextPrompts []struct {
				Text string `json:"text"`
			} `json:"text_prompts"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotPrompt = body.TextPrompts[0].Text
		json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]string{{"base64": "aW1n"}},
		})
	}))
	defer srv.Close()

	c := NewStability("key", "", time.Second).WithBaseURL(srv.URL)
	filters := Filters{ColorTheme: ThemeCool, Vibe: 0.0, Layout: LayoutMessy}
	if _, err := Regenerate(context.Background(), c, "forest", filters, 1); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	want := "forest, cool color theme, subtle mood, dynamic composition"
	if gotPrompt != want {
		t.Errorf("prompt: got %q, want %q", gotPrompt, want)
	}
}
