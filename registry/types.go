package registry

import (
	"github.com/google/uuid"

	"github.com/wippyai/contract/dispatch"
)

// ID is an opaque reference to a handle in a Table.
// ID 0 is reserved and always invalid.
type ID uint32

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventRemoved:
		return "removed"
	}
	return "unknown"
}

// Event describes a handle entering or leaving a table.
type Event struct {
	Handle   dispatch.Handle
	Contract string
	Table    uuid.UUID
	ID       ID
	Type     EventType
}

// Observer receives lifecycle events. Calls happen synchronously, after the
// table has been updated.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }
