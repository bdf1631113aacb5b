package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSink) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// hangingSink never answers until the publish context ends.
type hangingSink struct {
	mu    sync.Mutex
	calls int
}

func (h *hangingSink) Publish(ctx context.Context, _ Event) error {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (h *hangingSink) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// returnsWithin fails the test when fn is still running after d.
func returnsWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("still blocked after %s", d)
	}
}

type failingStore struct{ InMemoryStore }

func (*failingStore) Append(context.Context, Event) error { return errors.New("db down") }

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	sink := &recordingSink{}
	pub := NewPublisher(store, WithSinks(sink))
	defer pub.Close()

	pub.Emit(context.Background(), Event{ClaimID: "CLM-1", Action: ActionClaimSubmitted, Actor: "Alex Doe"})

	events, err := pub.List(context.Background(), "CLM-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionClaimSubmitted, events[0].Action)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, 1, sink.count())
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	ctx, cancel := context.WithCancel(context.Background())
	for range 10 {
		pub.Emit(ctx, Event{ClaimID: "CLM-2", Action: ActionCommentAdded})
	}
	cancel()
	pub.Close()

	events, err := store.ListByClaim(context.Background(), "CLM-2")
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_FailuresAreSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker unavailable")}
	pub := NewPublisher(&failingStore{}, WithSinks(sink, nil))
	defer pub.Close()

	assert.NotPanics(t, func() {
		pub.Emit(context.Background(), Event{ClaimID: "CLM-3", Action: ActionStatusChanged})
	})
	assert.Equal(t, 1, sink.count())
}

func TestInMemoryStore_FiltersByAction(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, Event{ID: "1", ClaimID: "CLM-4", Action: ActionClaimSubmitted}))
	require.NoError(t, store.Append(ctx, Event{ID: "2", ClaimID: "CLM-4", Action: ActionStatusChanged}))
	require.NoError(t, store.Append(ctx, Event{ID: "3", ClaimID: "CLM-4", Action: ActionCommentAdded}))

	events, err := store.ListByClaim(ctx, "CLM-4", ActionStatusChanged, ActionCommentAdded)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2", events[0].ID)
	assert.Equal(t, "3", events[1].ID)
}

func TestPublisher_StuckSinkNeverBlocksEmit(t *testing.T) {
	t.Run("async mode drops events once the buffer is full", func(t *testing.T) {
		store := NewInMemoryStore()
		sink := &hangingSink{}
		pub := NewPublisher(store, WithSinks(sink), WithAsyncBuffer(1), WithSinkTimeout(50*time.Millisecond))

		returnsWithin(t, time.Second, func() {
			for range 5 {
				pub.Emit(context.Background(), Event{ClaimID: "CLM-5", Action: ActionCommentAdded})
			}
		})
		returnsWithin(t, 2*time.Second, pub.Close)

		events, err := store.ListByClaim(context.Background(), "CLM-5")
		require.NoError(t, err)
		assert.NotEmpty(t, events)
		assert.Less(t, len(events), 5)
		assert.Equal(t, len(events), sink.count())
	})

	t.Run("sync mode gives up after the sink timeout", func(t *testing.T) {
		store := NewInMemoryStore()
		pub := NewPublisher(store, WithSinks(&hangingSink{}), WithSinkTimeout(50*time.Millisecond))
		defer pub.Close()

		returnsWithin(t, time.Second, func() {
			pub.Emit(context.Background(), Event{ClaimID: "CLM-6", Action: ActionStatusChanged})
		})

		events, err := store.ListByClaim(context.Background(), "CLM-6")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}
