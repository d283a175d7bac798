package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingHandler struct {
	mu     sync.Mutex
	seen   []Event
	accept string
	err    error
}

func (h *recordingHandler) CanHandle(eventType string) bool { return eventType == h.accept }

func (h *recordingHandler) Handle(e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e)
	return h.err
}

func TestInMemoryEventStore_Versions(t *testing.T) {
	store := NewInMemoryEventStore(nil, 0)

	require.NoError(t, Publish(store, ProjectUpdatedEvent, "project-1", ProjectUpdated{ProjectID: 1}))
	require.NoError(t, Publish(store, ProjectUpdatedEvent, "project-1", ProjectUpdated{ProjectID: 1}))
	require.NoError(t, Publish(store, ProjectDeletedEvent, "project-2", ProjectDeleted{ProjectID: 2}))

	stream, err := store.ReadEvents("project-1", 0)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, 1, stream[0].Version())
	assert.Equal(t, 2, stream[1].Version())

	tail, err := store.ReadEvents("project-1", 2)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing, err := store.ReadEvents("nope", 1)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestInMemoryEventStore_MaxEvents(t *testing.T) {
	store := NewInMemoryEventStore(nil, 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, Publish(store, TaskChangedEvent, "task", TaskChanged{TaskID: int64(i)}))
	}
	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(4), all[1].Data().(TaskChanged).TaskID)
}

func TestInMemoryEventStore_HandlerErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	store := NewInMemoryEventStore(zap.New(core), 0)

	failing := &recordingHandler{accept: MRFSavedEvent, err: errors.New("disk full")}
	ignored := &recordingHandler{accept: "other"}
	require.NoError(t, store.Subscribe([]string{MRFSavedEvent}, failing))
	require.NoError(t, store.Subscribe([]string{MRFSavedEvent}, ignored))

	require.NoError(t, Publish(store, MRFSavedEvent, "mrf-MRF-1", MRFSaved{Form: "MRF-1"}))
	store.Wait()

	assert.Len(t, failing.seen, 1)
	assert.Empty(t, ignored.seen)
	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, MRFSavedEvent, entries[0].ContextMap()["event"])

	require.NoError(t, store.Unsubscribe(failing))
	require.NoError(t, Publish(store, MRFSavedEvent, "mrf-MRF-1", MRFSaved{Form: "MRF-1"}))
	store.Wait()
	assert.Len(t, failing.seen, 1)
}

func TestAuditLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := NewInMemoryEventStore(nil, 0)
	audit := NewAuditLogger(zap.New(core), AllEventTypes)
	require.NoError(t, audit.Attach(store))

	require.NoError(t, Publish(store, UserRegisteredEvent, "user-ana", UserRegistered{Username: "ana", Role: "Guest"}))
	require.NoError(t, Publish(store, ForecastToggledEvent, "forecast-3", ForecastChanged{EntryID: 3}))
	store.Wait()

	assert.Equal(t, 1, logs.FilterMessage(UserRegisteredEvent).Len())
	assert.Equal(t, 1, logs.FilterMessage(ForecastToggledEvent).Len())
	assert.False(t, audit.CanHandle("unknown.event"))
}
