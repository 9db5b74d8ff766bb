package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeExecute EventType = "node_execute"
	EventNodeResult  EventType = "node_result"
	EventConnect     EventType = "connect"
	EventDisconnect  EventType = "disconnect"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent describes the start or the outcome of a node execution.
type NodeEvent struct {
	EventBase
	InstanceID string        `json:"instance_id"`
	TypeID     string        `json:"type_id"`
	Duration   time.Duration `json:"duration,omitempty"`
	Memoized   bool          `json:"memoized,omitempty"`
	Err        error         `json:"-"`
}

// IsError reports whether the execution failed.
func (e *NodeEvent) IsError() bool { return e.Err != nil }

// ConnectionEvent describes a wire being created or severed.
type ConnectionEvent struct {
	EventBase
	FromInstanceID string `json:"from_instance_id"`
	FromOutput     string `json:"from_output"`
	ToInstanceID   string `json:"to_instance_id"`
	ToInput        string `json:"to_input"`
}

// LifecycleHooks defines callbacks for graph observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNodeExecute func(*NodeEvent)
	OnNodeResult  func(*NodeEvent)
	OnConnect     func(*ConnectionEvent)
	OnDisconnect  func(*ConnectionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeExecute: chain(h.OnNodeExecute, other.OnNodeExecute),
		OnNodeResult:  chain(h.OnNodeResult, other.OnNodeResult),
		OnConnect:     chain(h.OnConnect, other.OnConnect),
		OnDisconnect:  chain(h.OnDisconnect, other.OnDisconnect),
	}
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
