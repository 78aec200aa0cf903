// Package server wires handlers and middleware into the HTTP server.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/auth"
	"github.com/jumanahhhh/moodboard-gen/internal/boards"
	"github.com/jumanahhhh/moodboard-gen/internal/chat"
	"github.com/jumanahhhh/moodboard-gen/internal/events"
	"github.com/jumanahhhh/moodboard-gen/internal/moodboard"
)

// Deps gathers everything the router needs. Firebase is optional.
type Deps struct {
	Auth      auth.Handler
	AuthMW    auth.Middleware
	Firebase  *auth.FirebaseVerifier
	Chat      chat.Handler
	Moodboard moodboard.Handler
	Boards    boards.Handler
	Events    events.Handler
	Logger    *zap.Logger
}

// New constructs the HTTP server with routes and middleware.
func New(port string, deps Deps) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(deps.AuthMW.InjectUser)
	if deps.Firebase != nil {
		router.Use(deps.Firebase.InjectUser)
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.Post("/logout", deps.Auth.Logout)
			r.Get("/me", deps.Auth.Me)
		})
		r.Route("/chat", deps.Chat.Routes)
		r.Route("/moodboard", deps.Moodboard.Routes)
		r.Route("/boards", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			deps.Boards.Routes(r)
		})
		r.Get("/events", deps.Events.Stream)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if deps.Logger != nil {
		deps.Logger.Info("server ready", zap.String("addr", srv.Addr))
	}
	return srv
}
