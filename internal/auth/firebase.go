package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/jumanahhhh/moodboard-gen/internal/storage"
)

// FirebaseVerifier validates Firebase ID tokens passed as bearer
// tokens. It is an alternative to cookie sessions for clients that
// sign in through Firebase.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from a
// service-account credentials file.
func NewFirebaseVerifier(ctx context.Context, credentialsPath string) (*FirebaseVerifier, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path is required")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// InjectUser attaches a user derived from a valid bearer ID token.
// Requests that already carry a user, or carry no token, pass through.
func (v *FirebaseVerifier) InjectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		decoded, err := v.client.VerifyIDToken(r.Context(), token)
		if err != nil {
			jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		user := storage.User{ID: decoded.UID}
		if email, ok := decoded.Claims["email"].(string); ok {
			user.Email = email
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
