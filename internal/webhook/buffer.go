package webhook

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is one received webhook.
type Event struct {
	Sequence   uint64          `json:"sequence"`
	EventType  string          `json:"event_type"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Buffer is a fixed-capacity ring of events. When full, appending evicts
// the oldest entry. Safe for concurrent use.
type Buffer struct {
	mu     sync.Mutex
	events []Event
	start  int
	count  int
	seq    uint64
}

// NewBuffer creates a buffer holding at most capacity events. Capacity must
// be positive.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{events: make([]Event, capacity)}
}

// Append stores an event, assigning it the next sequence number, and
// returns the stored event. The oldest event is evicted when the buffer is
// full.
func (b *Buffer) Append(eventType string, payload json.RawMessage) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev := Event{
		Sequence:   b.seq,
		EventType:  eventType,
		ReceivedAt: time.Now().UTC(),
		Payload:    payload,
	}

	if b.count < len(b.events) {
		b.events[(b.start+b.count)%len(b.events)] = ev
		b.count++
	} else {
		b.events[b.start] = ev
		b.start = (b.start + 1) % len(b.events)
	}
	return ev
}

// Events returns a snapshot of the retained events in ascending sequence
// order. The buffer is not drained.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.events[(b.start+i)%len(b.events)])
	}
	return out
}

// Len returns the number of retained events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Total returns how many events have ever been appended.
func (b *Buffer) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Capacity returns the maximum number of retained events.
func (b *Buffer) Capacity() int {
	return len(b.events)
}
