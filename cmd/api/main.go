package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/auth"
	"github.com/jumanahhhh/moodboard-gen/internal/boards"
	"github.com/jumanahhhh/moodboard-gen/internal/cache"
	"github.com/jumanahhhh/moodboard-gen/internal/chat"
	"github.com/jumanahhhh/moodboard-gen/internal/config"
	"github.com/jumanahhhh/moodboard-gen/internal/events"
	"github.com/jumanahhhh/moodboard-gen/internal/imagegen"
	"github.com/jumanahhhh/moodboard-gen/internal/llm"
	"github.com/jumanahhhh/moodboard-gen/internal/logging"
	"github.com/jumanahhhh/moodboard-gen/internal/media"
	"github.com/jumanahhhh/moodboard-gen/internal/moodboard"
	"github.com/jumanahhhh/moodboard-gen/internal/palette"
	"github.com/jumanahhhh/moodboard-gen/internal/server"
	"github.com/jumanahhhh/moodboard-gen/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}
	defer store.Close()

	objects, err := media.NewStore(ctx, media.Config{
		Bucket:         cfg.Media.Bucket,
		Region:         cfg.Media.Region,
		Endpoint:       cfg.Media.Endpoint,
		PublicURL:      cfg.Media.PublicURL,
		KeyPrefix:      cfg.Media.KeyPrefix,
		ForcePathStyle: cfg.Media.ForcePathStyle,
	})
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}
	if cfg.Media.Bucket == "" || cfg.Media.Region == "" {
		local, err := media.NewLocalStore("")
		if err != nil {
			logger.Fatal("failed to init local media storage", zap.Error(err))
		}
		objects = local
		logger.Info("object storage: using local filesystem (S3 config missing)")
	}

	var listCache *cache.BoardListCache
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.Warn("redis unavailable, board listings uncached", zap.Error(err))
		} else {
			listCache = cache.NewBoardListCache(client, cfg.Redis.ListTTL, logger)
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var textClient llm.Client
	if cfg.LLMProvider == "openai" && cfg.OpenAI.APIKey != "" {
		textClient = llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		logger.Info("text completion: openai", zap.String("model", cfg.OpenAI.Model))
	} else {
		textClient = llm.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout, nil)
		logger.Info("text completion: gemini", zap.String("model", cfg.Gemini.Model))
	}

	var palettes palette.Service
	if cfg.Palette.URL != "" {
		palettes = palette.NewRemote(cfg.Palette.URL, cfg.Palette.Timeout)
		logger.Info("palette service: remote", zap.String("url", cfg.Palette.URL))
	} else {
		palettes = palette.NewLocal()
		logger.Info("palette service: local lookup")
	}

	generator := newGenerator(cfg, objects, logger)

	eventBroker := events.NewBroker()
	registry := chat.NewRegistry(textClient, palettes, logger)
	gateway := boards.NewGateway(objects, eventBroker, listCache, logger)
	boardSessions := moodboard.NewRegistry(generator, cfg.Images.Count)

	sessions := auth.SessionManager{
		Secret:       []byte(cfg.Auth.SessionSecret),
		Duration:     cfg.Auth.SessionDuration,
		SecureCookie: cfg.Auth.SecureCookie,
	}

	var firebase *auth.FirebaseVerifier
	if cfg.Auth.FirebaseCredentials != "" {
		firebase, err = auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseCredentials)
		if err != nil {
			logger.Fatal("failed to init firebase verifier", zap.Error(err))
		}
		logger.Info("firebase token verification enabled")
	}

	srv := server.New(cfg.Port, server.Deps{
		Auth:      auth.Handler{Sessions: sessions, Store: store, Logger: logger},
		AuthMW:    auth.Middleware{Sessions: sessions, Store: store, Logger: logger},
		Firebase:  firebase,
		Chat:      chat.Handler{Registry: registry, Broker: eventBroker},
		Moodboard: moodboard.Handler{
			Generator: generator,
			Count:     cfg.Images.Count,
			Registry:  boardSessions,
			Saver:     gateway,
			Broker:    eventBroker,
			Logger:    logger,
		},
		Boards:    boards.Handler{Gateway: gateway, Logger: logger},
		Events:    events.Handler{Broker: eventBroker},
		Logger:    logger,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		logger.Info("shutting down server")
		if err := srv.Close(); err != nil {
			logger.Error("server close error", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// newGenerator selects the image backend from config. Backends that
// lack credentials fall back to the queue client when a Space URL is
// present, otherwise Stability.
func newGenerator(cfg config.Config, objects media.ObjectStore, logger *zap.Logger) imagegen.Generator {
	img := cfg.Images
	switch img.Backend {
	case "gradio":
		if img.GradioBaseURL != "" {
			logger.Info("image backend: gradio queue", zap.String("url", img.GradioBaseURL))
			return imagegen.NewGradio(img.GradioBaseURL, img.Timeout, logger)
		}
	case "gemini":
		if cfg.Gemini.APIKey != "" {
			logger.Info("image backend: gemini", zap.String("model", img.GeminiModel))
			return imagegen.NewGemini(cfg.Gemini.APIKey, img.GeminiModel, img.Timeout)
		}
	case "vertex":
		if img.VertexProject != "" {
			logger.Info("image backend: vertex imagen", zap.String("project", img.VertexProject))
			return imagegen.NewVertex(imagegen.VertexConfig{
				ProjectID: img.VertexProject,
				Location:  img.VertexLocation,
				Model:     img.VertexModel,
			}, objects)
		}
	case "huggingface":
		if img.HuggingFaceURL != "" {
			logger.Info("image backend: hugging face inference")
			return imagegen.NewHuggingFace(img.HuggingFaceKey, img.HuggingFaceURL, img.Timeout)
		}
	}
	logger.Info("image backend: stability", zap.String("engine", img.StabilityEngine))
	return imagegen.NewStability(img.StabilityAPIKey, img.StabilityEngine, img.Timeout)
}
