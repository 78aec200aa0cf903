package boards

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jumanahhhh/moodboard-gen/internal/auth"
	"github.com/jumanahhhh/moodboard-gen/internal/storage"
)

func newBoardServer(t *testing.T, store *fakeStore) *httptest.Server {
	t.Helper()
	gateway := NewGateway(store, nil, nil, nil)
	gateway.now = func() time.Time { return time.UnixMilli(1700000000000) }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithUser(req.Context(), storage.User{ID: "user-1"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/boards", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		Handler{Gateway: gateway}.Routes(r)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSaveListDeleteOverHTTP(t *testing.T) {
	store := newFakeStore()
	srv := newBoardServer(t, store)

	body, _ := json.Marshal(saveRequest{
		Images: []string{dataURL("img")},
		Prompt: "soft morning light",
	})
	resp, err := http.Post(srv.URL+"/api/boards/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save: status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/boards/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var listing struct {
		Boards []struct {
			ID     string `json:"id"`
			Prompt string `json:"prompt"`
		} `json:"boards"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Boards) != 1 || listing.Boards[0].Prompt != "soft morning light" {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/boards/"+listing.Boards[0].ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	if len(store.objects) != 0 {
		t.Fatalf("objects left after delete: %v", store.objects)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/boards/nope", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete missing: status %d", resp.StatusCode)
	}
}

func TestSaveRequiresImages(t *testing.T) {
	srv := newBoardServer(t, newFakeStore())

	body, _ := json.Marshal(saveRequest{Prompt: "no images"})
	resp, err := http.Post(srv.URL+"/api/boards/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBoardsRequireAuth(t *testing.T) {
	gateway := NewGateway(newFakeStore(), nil, nil, nil)
	r := chi.NewRouter()
	r.Route("/api/boards", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		Handler{Gateway: gateway}.Routes(r)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/boards/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
