package events

import (
	"testing"
	"time"
)

func TestBrokerPublishFanOut(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(Event{Type: TypeMoodboardSaved, UserID: "u1", BoardID: "100_data.json"})

	for name, ch := range map[string]chan Event{"a": a, "c": c} {
		select {
		case evt := <-ch:
			if evt.Type != TypeMoodboardSaved || evt.UserID != "u1" {
				t.Errorf("%s: got %+v", name, evt)
			}
			if evt.Timestamp == 0 {
				t.Errorf("%s: timestamp not stamped", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: no event received", name)
		}
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill the buffered channel without draining; extra publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			b.Publish(Event{Type: TypeGenerationCompleted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on slow subscriber")
	}
}
