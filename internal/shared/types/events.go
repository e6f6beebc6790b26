package types

import "time"

// EventType identifies a store mutation event
type EventType string

const (
	EventComponentAdded    EventType = "component_added"
	EventComponentRemoved  EventType = "component_removed"
	EventComponentUpdated  EventType = "component_updated"
	EventComponentSelected EventType = "component_selected"
	EventStateCleared      EventType = "state_cleared"
	EventStateRestored     EventType = "state_restored"
)

// Event is emitted to subscribers after every store mutation
type Event struct {
	Type        EventType   `json:"type"`
	ComponentID string      `json:"component_id,omitempty"`
	Canvas      Canvas      `json:"canvas,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload,omitempty"`
}
