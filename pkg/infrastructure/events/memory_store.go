package events

import (
	"sync"

	"go.uber.org/zap"
)

// InMemoryEventStore keeps events per stream plus a bounded global log and
// runs subscribed handlers asynchronously
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	maxEvents   int
	logger      *zap.Logger
	pending     sync.WaitGroup
}

// NewInMemoryEventStore creates a store that keeps at most maxEvents in its
// global log. Zero keeps everything.
func NewInMemoryEventStore(logger *zap.Logger, maxEvents int) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		maxEvents:   maxEvents,
		logger:      logger,
	}
}

// Verify interface compliance
var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := sequenced(event, streamID, len(s.streams[streamID])+1)
	s.streams[streamID] = append(s.streams[streamID], stored)
	s.allEvents = append(s.allEvents, stored)
	s.position++
	if s.maxEvents > 0 && len(s.allEvents) > s.maxEvents {
		s.allEvents = s.allEvents[len(s.allEvents)-s.maxEvents:]
	}

	s.dispatch(stored)

	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return events[fromVersion-1:], nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return s.allEvents[fromPosition:], nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

// Wait blocks until every handler started so far has returned
func (s *InMemoryEventStore) Wait() {
	s.pending.Wait()
}

// dispatch hands the event to matching handlers; callers hold the lock
func (s *InMemoryEventStore) dispatch(event Event) {
	for _, handler := range s.subscribers[event.Type()] {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		s.pending.Add(1)
		go func(h EventHandler, e Event) {
			defer s.pending.Done()
			if err := h.Handle(e); err != nil {
				s.logger.Error("event handler failed",
					zap.String("event", e.Type()),
					zap.String("stream", e.StreamID()),
					zap.Error(err))
			}
		}(handler, event)
	}
}
