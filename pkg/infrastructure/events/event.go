// Package events carries domain change notifications from the application
// services to in-process subscribers such as the audit log.
package events

import (
	"time"
)

// Event is one change notification. Version is the position of the event
// in its stream, starting at 1.
type Event interface {
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// Record is the stored form of an event
type Record struct {
	Kind    string    `json:"type"`
	Stream  string    `json:"stream"`
	Payload any       `json:"data"`
	At      time.Time `json:"at"`
	Seq     int       `json:"version"`
}

func (r Record) Type() string         { return r.Kind }
func (r Record) StreamID() string     { return r.Stream }
func (r Record) Data() any            { return r.Payload }
func (r Record) Timestamp() time.Time { return r.At }
func (r Record) Version() int         { return r.Seq }

// NewEvent stamps a payload with the current UTC time. The store assigns
// the version on append.
func NewEvent(eventType, streamID string, data any) Event {
	return Record{
		Kind:    eventType,
		Stream:  streamID,
		Payload: data,
		At:      time.Now().UTC(),
	}
}

// sequenced copies an event into streamID at position seq
func sequenced(event Event, streamID string, seq int) Record {
	return Record{
		Kind:    event.Type(),
		Stream:  streamID,
		Payload: event.Data(),
		At:      event.Timestamp(),
		Seq:     seq,
	}
}

// Publish appends a new event to streamID
func Publish(store EventStore, eventType, streamID string, data any) error {
	return store.AppendEvent(streamID, NewEvent(eventType, streamID, data))
}
