package moodboard

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jumanahhhh/moodboard-gen/internal/imagegen"
)

// Registry tracks live board sessions by id. Each session owns an
// Assembler holding the images and filters the user last saw.
type Registry struct {
	generator imagegen.Generator
	count     int

	mu       sync.RWMutex
	sessions map[string]*Assembler
}

// NewRegistry constructs a board-session registry.
func NewRegistry(generator imagegen.Generator, count int) *Registry {
	return &Registry{
		generator: generator,
		count:     count,
		sessions:  make(map[string]*Assembler),
	}
}

// Create starts a session around the prompt and its initial image set.
func (r *Registry) Create(prompt string, images []string) (string, *Assembler) {
	id := uuid.NewString()
	asm := NewAssembler(r.generator, prompt, images, r.count)

	r.mu.Lock()
	r.sessions[id] = asm
	r.mu.Unlock()

	return id, asm
}

// Get returns the assembler for a session id.
func (r *Registry) Get(id string) (*Assembler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asm, ok := r.sessions[id]
	return asm, ok
}

// Remove discards a session's state.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
