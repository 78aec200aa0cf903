package moodboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jumanahhhh/moodboard-gen/internal/auth"
	"github.com/jumanahhhh/moodboard-gen/internal/imagegen"
	"github.com/jumanahhhh/moodboard-gen/internal/palette"
	"github.com/jumanahhhh/moodboard-gen/internal/storage"
)

type stubSaver struct {
	userID string
	record Record
}

func (s *stubSaver) Save(_ context.Context, userID string, record Record) (Record, error) {
	s.userID = userID
	s.record = record
	record.ID = "1000"
	return record, nil
}

func newBoardServer(t *testing.T, gen imagegen.Generator, saver Saver, user *storage.User) *httptest.Server {
	t.Helper()
	h := Handler{
		Generator: gen,
		Count:     4,
		Registry:  NewRegistry(gen, 4),
		Saver:     saver,
	}
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), *user)))
			})
		})
	}
	r.Route("/api/moodboard", h.Routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newGenerateServer(t *testing.T, gen imagegen.Generator) *httptest.Server {
	t.Helper()
	return newBoardServer(t, gen, nil, nil)
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestGenerateReturnsLaidOutBoard(t *testing.T) {
	gen := &stubGenerator{images: []string{"a", "b", "c", "d"}}
	srv := newGenerateServer(t, gen)

	resp := postJSON(t, srv.URL+"/api/moodboard/generate", generateRequest{Prompt: "forest light"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Images) != 4 || len(out.Board) != 4 {
		t.Fatalf("unexpected board size: %d images, %d cells", len(out.Images), len(out.Board))
	}
	if out.Filters.Layout != imagegen.LayoutMessy {
		t.Fatalf("expected default layout, got %q", out.Filters.Layout)
	}
	if gen.prompt != "forest light" {
		t.Fatalf("prompt not forwarded verbatim: %q", gen.prompt)
	}
}

func TestGenerateWithoutFiltersSendsBarePrompt(t *testing.T) {
	gen := &stubGenerator{images: []string{"a", "b", "c", "d"}}
	srv := newGenerateServer(t, gen)

	resp := postJSON(t, srv.URL+"/api/moodboard/generate", generateRequest{Prompt: "misty forest"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if gen.prompt != "misty forest" {
		t.Fatalf("backend received a rewritten prompt: %q", gen.prompt)
	}
}

func TestGenerateAppliesFilters(t *testing.T) {
	gen := &stubGenerator{images: []string{"a", "b", "c", "d"}}
	srv := newGenerateServer(t, gen)

	resp := postJSON(t, srv.URL+"/api/moodboard/generate", generateRequest{
		Prompt:  "forest",
		Filters: &imagegen.Filters{ColorTheme: imagegen.ThemeWarm, Vibe: 1, Layout: imagegen.LayoutBalanced},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.Contains(gen.prompt, "warm color theme") || !strings.Contains(gen.prompt, "intense mood") {
		t.Fatalf("filters not applied to prompt: %q", gen.prompt)
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	gen := &stubGenerator{images: []string{"a"}}
	srv := newGenerateServer(t, gen)

	resp, err := http.Post(srv.URL+"/api/moodboard/generate", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing prompt: status %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/moodboard/generate", generateRequest{
		Prompt:  "x",
		Filters: &imagegen.Filters{ColorTheme: "neon", Vibe: 0.5, Layout: imagegen.LayoutMessy},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid filters: status %d", resp.StatusCode)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times for rejected requests", gen.calls)
	}
}

func TestGenerateSurfacesBackendFailure(t *testing.T) {
	gen := &stubGenerator{err: &imagegen.GenerationError{Backend: "stability", Status: 401, Message: "bad key"}}
	srv := newGenerateServer(t, gen)

	resp := postJSON(t, srv.URL+"/api/moodboard/generate", generateRequest{Prompt: "x"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

// paletteStub mimics a backend whose board response also carries
// palette data.
type paletteStub struct {
	stubGenerator
	pal palette.Palette
}

func (p *paletteStub) GenerateBoard(_ context.Context, prompt string) imagegen.BoardResult {
	p.prompt = prompt
	p.calls++
	return imagegen.BoardResult{Images: p.images, Palette: p.pal}
}

func TestGenerateSurfacesEmbeddedPalette(t *testing.T) {
	gen := &paletteStub{
		stubGenerator: stubGenerator{images: []string{"a", "b", "c", "d"}},
		pal: palette.Palette{
			BaseColor:    "#2f4f4f",
			ColorPalette: []string{"#2f4f4f", "#8fbc8f"},
			Fonts:        []string{"Cormorant"},
		},
	}
	srv := newGenerateServer(t, gen)

	resp := postJSON(t, srv.URL+"/api/moodboard/generate", generateRequest{Prompt: "deep sea"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Palette == nil {
		t.Fatal("expected embedded palette in response")
	}
	if out.Palette.BaseColor != "#2f4f4f" || len(out.Palette.ColorPalette) != 2 {
		t.Fatalf("palette not forwarded: %+v", out.Palette)
	}
}

func TestSessionLifecycle(t *testing.T) {
	gen := &stubGenerator{images: []string{"a", "b", "c", "d"}}
	saver := &stubSaver{}
	user := storage.User{ID: "u1", Email: "a@example.com"}
	srv := newBoardServer(t, gen, saver, &user)
	base := srv.URL + "/api/moodboard/sessions"

	resp := postJSON(t, base, sessionRequest{Prompt: "quiet harbor"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	var created sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	resp.Body.Close()
	if created.ID == "" || len(created.Board) != 4 {
		t.Fatalf("unexpected session: id %q, %d cells", created.ID, len(created.Board))
	}
	if gen.prompt != "quiet harbor" {
		t.Fatalf("initial generation rewrote the prompt: %q", gen.prompt)
	}

	// Regenerate with filters; the decorated prompt reaches the backend
	// and the session adopts the filters.
	gen.images = []string{"e", "f", "g", "h"}
	filters := imagegen.Filters{ColorTheme: imagegen.ThemeCool, Vibe: 0.2, Layout: imagegen.LayoutOrganized}
	resp = postJSON(t, base+"/"+created.ID+"/regenerate", regenerateRequest{Filters: filters})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("regenerate: status %d", resp.StatusCode)
	}
	var regen sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&regen); err != nil {
		t.Fatalf("decode regenerate: %v", err)
	}
	resp.Body.Close()
	if !strings.Contains(gen.prompt, "cool color theme") {
		t.Fatalf("regenerate sent undecorated prompt: %q", gen.prompt)
	}
	if regen.Filters.ColorTheme != imagegen.ThemeCool {
		t.Fatalf("session did not adopt filters: %+v", regen.Filters)
	}

	// Save without resending images or filters; the saver receives the
	// session's current state.
	resp = postJSON(t, base+"/"+created.ID+"/save", struct{}{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	if saver.userID != "u1" {
		t.Fatalf("saved for user %q", saver.userID)
	}
	if saver.record.Prompt != "quiet harbor" || saver.record.Filters.ColorTheme != imagegen.ThemeCool {
		t.Fatalf("saved record lost session state: %+v", saver.record)
	}
	if len(saver.record.Images) != 4 || saver.record.Images[0] != "e" {
		t.Fatalf("saved record has stale images: %v", saver.record.Images)
	}

	// Delete ends the session; subsequent reads miss.
	req, _ := http.NewRequest(http.MethodDelete, base+"/"+created.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp, err = http.Get(base + "/" + created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted session still readable: status %d", resp.StatusCode)
	}
}

func TestSaveSessionRequiresUser(t *testing.T) {
	gen := &stubGenerator{images: []string{"a", "b", "c", "d"}}
	srv := newBoardServer(t, gen, &stubSaver{}, nil)
	base := srv.URL + "/api/moodboard/sessions"

	resp := postJSON(t, base, sessionRequest{Prompt: "x"})
	var created sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	resp.Body.Close()

	resp = postJSON(t, base+"/"+created.ID+"/save", struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous save: status %d", resp.StatusCode)
	}
}

func TestSessionRoutesRejectUnknownID(t *testing.T) {
	gen := &stubGenerator{images: []string{"a"}}
	srv := newGenerateServer(t, gen)
	base := srv.URL + "/api/moodboard/sessions"

	resp := postJSON(t, base+"/nope/regenerate", regenerateRequest{Filters: imagegen.DefaultFilters()})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("regenerate unknown: status %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, base+"/nope", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete unknown: status %d", resp.StatusCode)
	}
}
