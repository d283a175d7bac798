package sessions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "state", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	session := &entities.Session{
		Token:     "abc",
		UserID:    7,
		Username:  "maria",
		Role:      entities.Procurement,
		CreatedAt: created,
		ExpiresAt: created.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "maria", got.Username)
	assert.Equal(t, entities.Procurement, got.Role)
	assert.True(t, got.ExpiresAt.Equal(session.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// deleting a missing token is not an error
	assert.NoError(t, store.Delete(ctx, "abc"))
}

func TestBoltStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	now := time.Now()

	require.NoError(t, store.Save(ctx, &entities.Session{Token: "a", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, &entities.Session{Token: "b", ExpiresAt: now}))
	require.NoError(t, store.Save(ctx, &entities.Session{Token: "c", ExpiresAt: now.Add(time.Hour)}))

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Save(context.Background(),
		&entities.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	j := NewJanitor(store, 10*time.Millisecond, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), "old")
		return err != nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
