package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventIntentClassified EventType = "intent_classified"
	EventHandlerEnter     EventType = "handler_enter"
	EventHandlerLeave     EventType = "handler_leave"
	EventSessionCommit    EventType = "session_commit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// RouteEvent describes one step of routing a message.
type RouteEvent struct {
	EventBase
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Handler    string  `json:"handler,omitempty"`
	// Rule is the classifier rule that matched.
	Rule     string        `json:"rule,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// CommitEvent is emitted after a message changed a session and the change was persisted.
type CommitEvent struct {
	EventBase
	Diff SessionDiff `json:"diff"`
	// Evicted is how many memory entries the trim dropped.
	Evicted int `json:"evicted,omitempty"`
}

// LifecycleHooks defines callbacks for router observability.
// Hooks run synchronously on the processing goroutine and must not block.
type LifecycleHooks struct {
	OnIntentClassified func(context.Context, *RouteEvent)
	OnHandlerEnter     func(context.Context, *RouteEvent)
	OnHandlerLeave     func(context.Context, *RouteEvent)
	OnCommit           func(context.Context, *CommitEvent)
}
