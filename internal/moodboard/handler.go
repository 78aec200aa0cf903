package moodboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/auth"
	"github.com/jumanahhhh/moodboard-gen/internal/events"
	"github.com/jumanahhhh/moodboard-gen/internal/imagegen"
	"github.com/jumanahhhh/moodboard-gen/internal/palette"
)

// Saver persists a finished board for a user.
type Saver interface {
	Save(ctx context.Context, userID string, record Record) (Record, error)
}

// Handler exposes board generation and board sessions over HTTP.
type Handler struct {
	Generator imagegen.Generator
	Count     int
	Registry  *Registry
	Saver     Saver
	Broker    *events.Broker
	Logger    *zap.Logger
}

// Routes mounts the generation and session endpoints on a chi router.
func (h Handler) Routes(r chi.Router) {
	r.Post("/generate", h.Generate)
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Post("/sessions/{id}/regenerate", h.RegenerateSession)
	r.Post("/sessions/{id}/save", h.SaveSession)
	r.Delete("/sessions/{id}", h.DeleteSession)
}

type generateRequest struct {
	Prompt  string            `json:"prompt"`
	Filters *imagegen.Filters `json:"filters,omitempty"`
}

type generateResponse struct {
	Prompt  string           `json:"prompt"`
	Images  []string         `json:"images"`
	Board   []PlacedImage    `json:"board"`
	Filters imagegen.Filters `json:"filters"`
	Palette *palette.Palette `json:"palette,omitempty"`
}

// Generate produces a fresh image set for the prompt and returns it
// laid out on the board grid. Without filters the prompt reaches the
// backend untouched; with filters it is rewritten with their clauses.
func (h Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Prompt == "" {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}
	filters := imagegen.DefaultFilters()
	prompt := req.Prompt
	if req.Filters != nil {
		filters = *req.Filters
		if err := filters.Validate(); err != nil {
			jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		prompt = imagegen.Decorate(req.Prompt, filters)
	}

	images, pal, err := h.run(r.Context(), prompt)
	if err != nil {
		h.generationError(w, err)
		return
	}

	board, err := Render(images, filters)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.Broker != nil {
		h.Broker.Publish(events.Event{Type: events.TypeGenerationCompleted})
	}
	jsonResponse(w, http.StatusOK, generateResponse{
		Prompt:  req.Prompt,
		Images:  images,
		Board:   board,
		Filters: filters,
		Palette: pal,
	})
}

type sessionRequest struct {
	Prompt string `json:"prompt"`
}

type sessionResponse struct {
	ID      string           `json:"id"`
	Prompt  string           `json:"prompt"`
	Images  []string         `json:"images"`
	Board   []PlacedImage    `json:"board"`
	Filters imagegen.Filters `json:"filters"`
	Palette *palette.Palette `json:"palette,omitempty"`
}

// CreateSession generates the initial image set from the bare prompt
// and starts a session that remembers images and filters across
// regenerations.
func (h Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Prompt == "" {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	images, pal, err := h.run(r.Context(), req.Prompt)
	if err != nil {
		h.generationError(w, err)
		return
	}

	id, asm := h.Registry.Create(req.Prompt, images)
	board, err := asm.Render()
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.Broker != nil {
		h.Broker.Publish(events.Event{Type: events.TypeGenerationCompleted, SessionID: id})
	}
	jsonResponse(w, http.StatusCreated, sessionResponse{
		ID:      id,
		Prompt:  req.Prompt,
		Images:  images,
		Board:   board,
		Filters: imagegen.DefaultFilters(),
		Palette: pal,
	})
}

func (h Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asm, ok := h.Registry.Get(id)
	if !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	images, prompt, filters := asm.Snapshot()
	board, err := Render(images, filters)
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	jsonResponse(w, http.StatusOK, sessionResponse{
		ID:      id,
		Prompt:  prompt,
		Images:  images,
		Board:   board,
		Filters: filters,
	})
}

type regenerateRequest struct {
	Filters imagegen.Filters `json:"filters"`
}

// RegenerateSession rewrites the session prompt with the filter clauses,
// generates a fresh set, and adopts the filters as session state.
func (h Handler) RegenerateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asm, ok := h.Registry.Get(id)
	if !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	board, err := asm.Regenerate(r.Context(), req.Filters)
	if err != nil {
		var genErr *imagegen.GenerationError
		if errors.As(err, &genErr) {
			h.generationError(w, err)
			return
		}
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.Broker != nil {
		h.Broker.Publish(events.Event{Type: events.TypeGenerationCompleted, SessionID: id})
	}
	images, prompt, filters := asm.Snapshot()
	jsonResponse(w, http.StatusOK, sessionResponse{
		ID:      id,
		Prompt:  prompt,
		Images:  images,
		Board:   board,
		Filters: filters,
	})
}

// SaveSession persists the session's current images under the filters
// in effect at the last render, without the client resending either.
func (h Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	asm, found := h.Registry.Get(chi.URLParam(r, "id"))
	if !found {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if h.Saver == nil {
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "board storage is not configured"})
		return
	}

	images, prompt, filters := asm.Snapshot()
	saved, err := h.Saver.Save(r.Context(), user.ID, Record{Images: images, Prompt: prompt, Filters: filters})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("session save failed", zap.Error(err))
		}
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	jsonResponse(w, http.StatusCreated, saved)
}

func (h Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Registry.Get(id); !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	h.Registry.Remove(id)
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// run dispatches to the backend, preferring the combined board call for
// backends that embed palette data in their response.
func (h Handler) run(ctx context.Context, prompt string) ([]string, *palette.Palette, error) {
	if bg, ok := h.Generator.(imagegen.BoardGenerator); ok {
		result := bg.GenerateBoard(ctx, prompt)
		p := result.Palette
		return result.Images, &p, nil
	}

	count := h.Count
	if count <= 0 {
		count = 4
	}
	images, err := h.Generator.Generate(ctx, prompt, count)
	return images, nil, err
}

func (h Handler) generationError(w http.ResponseWriter, err error) {
	var genErr *imagegen.GenerationError
	if errors.As(err, &genErr) {
		if h.Logger != nil {
			h.Logger.Warn("image backend rejected generation",
				zap.String("backend", genErr.Backend),
				zap.Int("status", genErr.Status))
		}
		jsonResponse(w, http.StatusBadGateway, map[string]string{"error": genErr.Error()})
		return
	}
	if h.Logger != nil {
		h.Logger.Error("generation failed", zap.Error(err))
	}
	jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
