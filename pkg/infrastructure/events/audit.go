package events

import (
	"go.uber.org/zap"
)

// AuditLogger writes every handled event to a zap logger
type AuditLogger struct {
	logger *zap.Logger
	types  map[string]bool
}

// NewAuditLogger creates an audit handler for the given event types
func NewAuditLogger(logger *zap.Logger, eventTypes []string) *AuditLogger {
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	return &AuditLogger{logger: logger.Named("audit"), types: types}
}

// Attach subscribes the logger to every type it handles
func (a *AuditLogger) Attach(store EventStore) error {
	eventTypes := make([]string, 0, len(a.types))
	for t := range a.types {
		eventTypes = append(eventTypes, t)
	}
	return store.Subscribe(eventTypes, a)
}

func (a *AuditLogger) CanHandle(eventType string) bool {
	return a.types[eventType]
}

func (a *AuditLogger) Handle(event Event) error {
	a.logger.Info(event.Type(),
		zap.String("stream", event.StreamID()),
		zap.Int("version", event.Version()),
		zap.Time("at", event.Timestamp()),
		zap.Any("data", event.Data()))
	return nil
}
