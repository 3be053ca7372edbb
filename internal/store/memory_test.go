package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/present"
)

func newTestStore(maxSessions int, ttl time.Duration) (*MemoryStore, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewMemoryStore(maxSessions, ttl, clock), clock
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s, _ := newTestStore(0, 0)

	sess, err := s.Create()
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, sess.State)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CompleteAndFail(t *testing.T) {
	s, _ := newTestStore(0, 0)
	sess, err := s.Create()
	require.NoError(t, err)

	ticket, err := s.Begin(sess.ID, "Berlin")
	require.NoError(t, err)
	got, _ := s.Get(sess.ID)
	assert.Equal(t, StateLoading, got.State)
	assert.Equal(t, "Berlin", got.Query)

	done, err := s.Complete(ticket, present.View{LocationName: "Berlin, Germany"})
	require.NoError(t, err)
	assert.Equal(t, StateReady, done.State)
	require.NotNil(t, done.View)
	assert.Equal(t, "Berlin, Germany", done.View.LocationName)

	ticket, err = s.Begin(sess.ID, "Xyzzyville")
	require.NoError(t, err)
	failed, err := s.Fail(ticket, "City lookup failed.")
	require.NoError(t, err)
	assert.Equal(t, StateError, failed.State)
	assert.Equal(t, "City lookup failed.", failed.Message)
	assert.Nil(t, failed.View, "an error never shows the previous result")
}

func TestMemoryStore_LateResponseIsDiscarded(t *testing.T) {
	s, _ := newTestStore(0, 0)
	sess, err := s.Create()
	require.NoError(t, err)

	first, err := s.Begin(sess.ID, "Paris")
	require.NoError(t, err)
	second, err := s.Begin(sess.ID, "Berlin")
	require.NoError(t, err)
	assert.Greater(t, second.Seq, first.Seq)

	_, err = s.Complete(second, present.View{LocationName: "Berlin"})
	require.NoError(t, err)

	cur, err := s.Complete(first, present.View{LocationName: "Paris"})
	assert.ErrorIs(t, err, ErrStaleTicket)
	assert.Equal(t, "Berlin", cur.View.LocationName)

	_, err = s.Fail(first, "boom")
	assert.ErrorIs(t, err, ErrStaleTicket)

	got, _ := s.Get(sess.ID)
	assert.Equal(t, StateReady, got.State)
	assert.Equal(t, "Berlin", got.View.LocationName)
}

func TestMemoryStore_MaxSessions(t *testing.T) {
	s, _ := newTestStore(2, 0)

	_, err := s.Create()
	require.NoError(t, err)
	_, err = s.Create()
	require.NoError(t, err)
	_, err = s.Create()
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_Prune(t *testing.T) {
	s, clock := newTestStore(0, 30*time.Minute)

	idle, _ := s.Create()
	active, _ := s.Create()
	inFlight, _ := s.Create()
	_, err := s.Begin(inFlight.ID, "Berlin")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = s.Get(active.ID)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	assert.Equal(t, 1, s.Prune())

	_, err = s.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(active.ID)
	assert.NoError(t, err)
	_, err = s.Get(inFlight.ID)
	assert.NoError(t, err, "sessions with a search in flight are kept")
}

func TestMemoryStore_PruneAbandonedSearch(t *testing.T) {
	s, clock := newTestStore(1, 30*time.Minute)

	sess, err := s.Create()
	require.NoError(t, err)
	_, err = s.Begin(sess.ID, "Berlin")
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 1, s.Prune())

	_, err = s.Create()
	assert.NoError(t, err, "abandoned search frees its slot")
}

func TestMemoryStore_PruneDisabled(t *testing.T) {
	s, clock := newTestStore(0, 0)
	_, _ = s.Create()
	clock.Advance(24 * time.Hour)
	assert.Equal(t, 0, s.Prune())
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_FinishAfterPrune(t *testing.T) {
	s, _ := newTestStore(0, 0)
	_, err := s.Complete(Ticket{SessionID: "gone", Seq: 1}, present.View{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s, _ := newTestStore(0, 0)
	sess, err := s.Create()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := s.Begin(sess.ID, "q")
			if err != nil {
				return
			}
			_, _ = s.Complete(ticket, present.View{})
			_, _ = s.Get(sess.ID)
		}()
	}
	wg.Wait()

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Contains(t, []State{StateLoading, StateReady}, got.State)
}
