package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jumanahhhh/moodboard-gen/internal/storage"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user storage.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (storage.User, bool) {
	user, ok := ctx.Value(userContextKey).(storage.User)
	return user, ok
}

// SessionManager issues and validates signed session tokens.
type SessionManager struct {
	Secret       []byte
	Duration     time.Duration
	CookieName   string
	SecureCookie bool
}

type sessionClaims struct {
	UserID  string
	Expires time.Time
}

var errInvalidToken = errors.New("invalid session token")

// Issue signs a token for userID valid for the configured duration.
func (sm SessionManager) Issue(userID string) (string, time.Time) {
	expires := time.Now().Add(sm.sessionDuration())
	payload := fmt.Sprintf("%s|%d", userID, expires.Unix())
	sig := sm.sign(payload)
	return payload + "." + base64.RawURLEncoding.EncodeToString(sig), expires
}

// Parse validates a token and returns its claims.
func (sm SessionManager) Parse(token string) (sessionClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return sessionClaims{}, errInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return sessionClaims{}, errInvalidToken
	}
	if !hmac.Equal(sig, sm.sign(parts[0])) {
		return sessionClaims{}, errInvalidToken
	}
	fields := strings.Split(parts[0], "|")
	if len(fields) != 2 || fields[0] == "" {
		return sessionClaims{}, errInvalidToken
	}
	unix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return sessionClaims{}, errInvalidToken
	}
	claims := sessionClaims{UserID: fields[0], Expires: time.Unix(unix, 0)}
	if time.Now().After(claims.Expires) {
		return sessionClaims{}, errInvalidToken
	}
	return claims, nil
}

func (sm SessionManager) sign(payload string) []byte {
	mac := hmac.New(sha256.New, sm.Secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// Middleware resolves session cookies into request users.
type Middleware struct {
	Sessions SessionManager
	Store    storage.Store
	Logger   *zap.Logger
}

// InjectUser attaches the user for a valid session cookie. Requests
// without a usable cookie pass through unauthenticated.
func (m Middleware) InjectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.Sessions.cookieName())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Sessions.Parse(cookie.Value)
		if err != nil {
			clear := m.Sessions.expiredCookie()
			http.SetCookie(w, &clear)
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.Store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) && m.Logger != nil {
				m.Logger.Warn("session user lookup failed", zap.Error(err))
			}
			clear := m.Sessions.expiredCookie()
			http.SetCookie(w, &clear)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAuth rejects requests lacking an authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler serves registration, login, and session endpoints.
type Handler struct {
	Sessions SessionManager
	Store    storage.Store
	Logger   *zap.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < 8 {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "email and a password of at least 8 characters are required"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, "hash password", err)
		return
	}
	user, err := h.Store.CreateUser(r.Context(), storage.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			jsonResponse(w, http.StatusConflict, map[string]string{"error": "an account with that email already exists"})
			return
		}
		h.serverError(w, "create user", err)
		return
	}
	h.startSession(w, user)
	jsonResponse(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}

func (h Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	user, err := h.Store.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		h.serverError(w, "look up user", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}
	h.startSession(w, user)
	jsonResponse(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

func (h Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.Sessions.expiredCookie()
	http.SetCookie(w, &cookie)
	jsonResponse(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	jsonResponse(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

func (h Handler) startSession(w http.ResponseWriter, user storage.User) {
	token, expires := h.Sessions.Issue(user.ID)
	cookie := h.Sessions.cookie(token, expires)
	http.SetCookie(w, &cookie)
}

func (h Handler) serverError(w http.ResponseWriter, action string, err error) {
	if h.Logger != nil {
		h.Logger.Error("auth request failed", zap.String("action", action), zap.Error(err))
	}
	jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func (sm SessionManager) cookie(token string, expires time.Time) http.Cookie {
	return http.Cookie{
		Name:     sm.cookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   sm.SecureCookie,
	}
}

func (sm SessionManager) expiredCookie() http.Cookie {
	return http.Cookie{
		Name:     sm.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   sm.SecureCookie,
	}
}

func (sm SessionManager) cookieName() string {
	if sm.CookieName != "" {
		return sm.CookieName
	}
	return "session_token"
}

func (sm SessionManager) sessionDuration() time.Duration {
	if sm.Duration <= 0 {
		return 7 * 24 * time.Hour
	}
	return sm.Duration
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func jsonResponse(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
