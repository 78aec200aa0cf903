// Package events fans analytics events out to SSE subscribers.
package events

import (
	"sync"
	"time"
)

// Event types emitted by the pipeline.
const (
	TypeMoodboardSaved       = "moodboard_saved"
	TypeMoodboardDeleted     = "moodboard_deleted"
	TypeGenerationCompleted  = "generation_completed"
	TypeConversationFinished = "conversation_finished"
)

// Event describes an analytics update tagged with user and time.
type Event struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id,omitempty"`
	BoardID   string `json:"board_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Broker manages SSE subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroker constructs a broker instance.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel from the broker.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
	close(ch)
}

// Publish fan-outs the event to all subscribers.
func (b *Broker) Publish(evt Event) {
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}
	b.mu.RLock()
	for ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			// drop if subscriber is slow
		}
	}
	b.mu.RUnlock()
}
