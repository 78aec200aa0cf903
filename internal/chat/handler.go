package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jumanahhhh/moodboard-gen/internal/events"
)

// Handler exposes conversation sessions over HTTP.
type Handler struct {
	Registry *Registry
	Broker   *events.Broker
}

// Routes mounts the session endpoints on a chi router.
func (h Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}/messages", h.GetMessages)
	r.Post("/sessions/{id}/messages", h.SubmitAnswer)
	r.Delete("/sessions/{id}", h.DeleteSession)
}

type sessionResponse struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

func (h Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, engine := h.Registry.Create()
	jsonResponse(w, http.StatusCreated, sessionResponse{ID: id, Messages: engine.Messages()})
}

func (h Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.Registry.Get(chi.URLParam(r, "id"))
	if !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"messages": engine.Messages()})
}

type answerRequest struct {
	Text string `json:"text"`
}

func (h Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	engine, ok := h.Registry.Get(id)
	if !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := engine.SubmitAnswer(r.Context(), req.Text)
	switch {
	case errors.Is(err, ErrEmptyAnswer):
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, ErrBusy):
		jsonResponse(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if result.Completed && h.Broker != nil {
		h.Broker.Publish(events.Event{Type: events.TypeConversationFinished, SessionID: id})
	}
	jsonResponse(w, http.StatusOK, result)
}

// DeleteSession discards the conversation state. Answers already
// submitted are gone with it.
func (h Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Registry.Get(id); !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	h.Registry.Remove(id)
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
