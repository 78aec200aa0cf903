package chat

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/llm"
	"github.com/jumanahhhh/moodboard-gen/internal/palette"
)

// Registry tracks live conversation sessions by id.
type Registry struct {
	llm      llm.Client
	palettes palette.Service
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Engine
}

// NewRegistry constructs a session registry.
func NewRegistry(client llm.Client, palettes palette.Service, logger *zap.Logger) *Registry {
	return &Registry{
		llm:      client,
		palettes: palettes,
		logger:   logger,
		sessions: make(map[string]*Engine),
	}
}

// Create starts a new session and returns its id and engine.
func (r *Registry) Create() (string, *Engine) {
	id := uuid.NewString()
	engine := NewEngine(r.llm, r.palettes, r.logger)

	r.mu.Lock()
	r.sessions[id] = engine
	r.mu.Unlock()

	return id, engine
}

// Get returns the engine for a session id.
func (r *Registry) Get(id string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.sessions[id]
	return engine, ok
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
