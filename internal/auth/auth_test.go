package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jumanahhhh/moodboard-gen/internal/storage"
)

func TestSessionRoundTrip(t *testing.T) {
	sm := SessionManager{Secret: []byte("test-secret"), Duration: time.Hour}
	token, expires := sm.Issue("user-1")
	if time.Until(expires) > time.Hour || time.Until(expires) < 59*time.Minute {
		t.Fatalf("unexpected expiry %v", expires)
	}
	claims, err := sm.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("got user %q", claims.UserID)
	}
}

func TestSessionRejectsTamperedToken(t *testing.T) {
	sm := SessionManager{Secret: []byte("test-secret"), Duration: time.Hour}
	token, _ := sm.Issue("user-1")

	tampered := strings.Replace(token, "user-1", "user-2", 1)
	if _, err := sm.Parse(tampered); err == nil {
		t.Fatal("expected tampered token to fail")
	}
	if _, err := sm.Parse("not-a-token"); err == nil {
		t.Fatal("expected malformed token to fail")
	}

	other := SessionManager{Secret: []byte("different"), Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected token signed with another key to fail")
	}
}

func TestSessionRejectsExpiredToken(t *testing.T) {
	sm := SessionManager{Secret: []byte("test-secret"), Duration: -time.Minute}
	token, _ := sm.Issue("user-1")
	if _, err := sm.Parse(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestInjectUserAttachesStoredUser(t *testing.T) {
	store := storage.NewInMemoryStore()
	user, err := store.CreateUser(context.Background(), storage.User{Email: "a@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sm := SessionManager{Secret: []byte("test-secret"), Duration: time.Hour}
	mw := Middleware{Sessions: sm, Store: store}

	var got storage.User
	var ok bool
	handler := mw.InjectUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserFromContext(r.Context())
	}))

	token, expires := sm.Issue(user.ID)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie := sm.cookie(token, expires)
	req.AddCookie(&cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || got.ID != user.ID {
		t.Fatalf("expected user %q in context, got %+v ok=%v", user.ID, got, ok)
	}
}

func TestInjectUserClearsBadCookie(t *testing.T) {
	store := storage.NewInMemoryStore()
	sm := SessionManager{Secret: []byte("test-secret"), Duration: time.Hour}
	mw := Middleware{Sessions: sm, Store: store}

	handler := mw.InjectUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); ok {
			t.Fatal("expected no user for bad cookie")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected bad cookie to be cleared")
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), storage.User{ID: "u"}))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	store := storage.NewInMemoryStore()
	sm := SessionManager{Secret: []byte("test-secret"), Duration: time.Hour}
	h := Handler{Sessions: sm, Store: store}

	body, _ := json.Marshal(map[string]string{"email": "A@Example.com", "password": "password1"})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same email again conflicts.
	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("register dup: expected 409, got %d", rec.Code)
	}

	login, _ := json.Marshal(map[string]string{"email": "a@example.com", "password": "password1"})
	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(login)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("login: expected session cookie")
	}

	wrong, _ := json.Marshal(map[string]string{"email": "a@example.com", "password": "wrongpass"})
	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(wrong)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login wrong password: expected 401, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := Handler{Sessions: SessionManager{Secret: []byte("s")}, Store: storage.NewInMemoryStore()}
	body, _ := json.Marshal(map[string]string{"email": "a@example.com", "password": "short"})
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", rec.Code)
	}
}
