package service

import (
	"sync"
	"time"
)

// Event reports a change to the loaded feature set.
type Event struct {
	Resource string    // "tiles"
	Action   string    // "loaded" or "reloaded"
	Tiles    int       // tiles in the set
	Features int       // features in the set
	Skipped  []string  // tile files that could not be read
	LoadedAt time.Time // when the set was built
}

// SetEvent describes set as an event of the given action.
func SetEvent(action string, set *FeatureSet) Event {
	ev := Event{Resource: "tiles", Action: action}
	if set != nil {
		ev.Tiles = set.Tiles
		ev.Features = set.Len()
		ev.Skipped = set.Skipped
		ev.LoadedAt = set.LoadedAt
	}
	return ev
}

// EventBus fans reload events out to subscribers. A subscriber that falls
// behind misses events instead of blocking the reload.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a buffered channel. Release it with Unsubscribe.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch and closes it.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
