package boards

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/auth"
	"github.com/jumanahhhh/moodboard-gen/internal/imagegen"
	"github.com/jumanahhhh/moodboard-gen/internal/media"
	"github.com/jumanahhhh/moodboard-gen/internal/moodboard"
)

// Handler exposes saved-board CRUD over HTTP. All routes assume the
// auth middleware has injected a user.
type Handler struct {
	Gateway *Gateway
	Logger  *zap.Logger
}

// Routes mounts the board endpoints on a chi router.
func (h Handler) Routes(r chi.Router) {
	r.Post("/", h.Save)
	r.Get("/", h.List)
	r.Delete("/{id}", h.Delete)
}

type saveRequest struct {
	Images  []string          `json:"images"`
	Prompt  string            `json:"prompt"`
	Filters *imagegen.Filters `json:"filters,omitempty"`
}

func (h Handler) Save(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Images) == 0 {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "at least one image is required"})
		return
	}

	record := moodboard.Record{Images: req.Images, Prompt: req.Prompt}
	if req.Filters != nil {
		record.Filters = *req.Filters
	}

	saved, err := h.Gateway.Save(r.Context(), user.ID, record)
	if err != nil {
		if errors.Is(err, media.ErrStoreDisabled) {
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "board storage is not configured"})
			return
		}
		h.serverError(w, "save board", err)
		return
	}
	jsonResponse(w, http.StatusCreated, saved)
}

func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	records, err := h.Gateway.List(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, media.ErrStoreDisabled) {
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "board storage is not configured"})
			return
		}
		h.serverError(w, "list boards", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"boards": records})
}

func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	err := h.Gateway.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, ErrBoardNotFound):
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "board not found"})
	case errors.Is(err, media.ErrStoreDisabled):
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "board storage is not configured"})
	case err != nil:
		h.serverError(w, "delete board", err)
	default:
		jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func (h Handler) serverError(w http.ResponseWriter, action string, err error) {
	if h.Logger != nil {
		h.Logger.Error("board request failed", zap.String("action", action), zap.Error(err))
	}
	jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
