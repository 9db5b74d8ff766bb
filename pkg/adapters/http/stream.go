package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// Event is one message on the /events stream.
type Event struct {
	Type       domain.EventType `json:"type"`
	InstanceID string           `json:"instanceId,omitempty"`
	TypeID     string           `json:"typeIdentifier,omitempty"`
	DurationMS float64          `json:"durationMs,omitempty"`
	Memoized   bool             `json:"memoized,omitempty"`
	Error      string           `json:"error,omitempty"`
	From       string           `json:"from,omitempty"`
	To         string           `json:"to,omitempty"`
}

// StreamManager fans graph events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- Event]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- Event]struct{}),
	}
}

// Subscribe registers a new listener. The returned func unsubscribes and
// closes the channel.
func (sm *StreamManager) Subscribe() (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 32)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Broadcast delivers ev to every subscriber without blocking.
func (sm *StreamManager) Broadcast(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "type", ev.Type)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast node results and wiring changes.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	conn := func(e *domain.ConnectionEvent) {
		sm.Broadcast(Event{
			Type: e.Type,
			From: e.FromInstanceID + "." + e.FromOutput,
			To:   e.ToInstanceID + "." + e.ToInput,
		})
	}
	return domain.LifecycleHooks{
		OnNodeResult: func(e *domain.NodeEvent) {
			ev := Event{
				Type:       e.Type,
				InstanceID: e.InstanceID,
				TypeID:     e.TypeID,
				DurationMS: float64(e.Duration.Microseconds()) / 1000,
				Memoized:   e.Memoized,
			}
			if e.Err != nil {
				ev.Error = e.Err.Error()
			}
			sm.Broadcast(ev)
		},
		OnConnect:    conn,
		OnDisconnect: conn,
	}
}

func (ev Event) data() string {
	b, err := json.Marshal(ev)
	if err != nil {
		return "{}"
	}
	return string(b)
}
