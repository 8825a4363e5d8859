package events

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRecorderCapacity bounds the journal when no capacity is given.
const DefaultRecorderCapacity = 1000

// Recorder is a bounded in-memory event journal. It keeps the most recent
// events in arrival order plus an LRU by-id index sized to the same
// capacity, so lookups stay available exactly as long as the journal entry.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	ordered  []Event
	byID     *lru.Cache[string, Event]
}

// NewRecorder creates a recorder retaining up to capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}
	// lru.New only fails on a non-positive size, which is excluded above.
	index, _ := lru.New[string, Event](capacity)
	return &Recorder{capacity: capacity, byID: index}
}

// Handle implements Sink.
func (r *Recorder) Handle(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ordered = append(r.ordered, event)
	if len(r.ordered) > r.capacity {
		r.ordered = r.ordered[len(r.ordered)-r.capacity:]
	}
	r.byID.Add(event.ID.String(), event)
	return nil
}

// Events returns the retained events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// OfType returns the retained events of one type, oldest first.
func (r *Recorder) OfType(t Type) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Event
	for _, e := range r.ordered {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ByID looks up a retained event by id.
func (r *Recorder) ByID(id string) (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID.Get(id)
}

// Len returns the number of retained events.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
