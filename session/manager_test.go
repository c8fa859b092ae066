package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/room4-2/OrderDesk/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingMirror struct {
	mu      sync.Mutex
	saved   map[string]Session
	deleted []string
	closed  bool
}

func newRecordingMirror() *recordingMirror {
	return &recordingMirror{saved: make(map[string]Session)}
}

func (m *recordingMirror) Save(_ context.Context, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[s.CallID] = s
}

func (m *recordingMirror) Delete(_ context.Context, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ids...)
	for _, id := range ids {
		delete(m.saved, id)
	}
}

func (m *recordingMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestUpdateCreatesSession(t *testing.T) {
	st := NewStore(time.Minute, nil, zaptest.NewLogger(t))

	s, created := st.Update(context.Background(), "CA1", func(*Session) {})
	assert.True(t, created)
	assert.Equal(t, "CA1", s.CallID)
	assert.Equal(t, StageVerifyOrder, s.Stage)
	assert.Zero(t, s.OfferIndex)
	assert.Nil(t, s.Order)

	_, created = st.Update(context.Background(), "CA1", func(*Session) {})
	assert.False(t, created)
	assert.Equal(t, 1, st.Len())
}

func TestUpdateReturnsCopy(t *testing.T) {
	st := NewStore(time.Minute, nil, nil)
	order := &catalog.Order{ID: "123"}

	s, _ := st.Update(context.Background(), "CA1", func(s *Session) {
		s.Stage = StageAfterDelivery
		s.Order = order
	})
	s.Stage = StageDone

	got, ok := st.Get("CA1")
	require.True(t, ok)
	assert.Equal(t, StageAfterDelivery, got.Stage)
	assert.Equal(t, "123", got.Order.ID)
}

func TestUpdateSerializesSameCall(t *testing.T) {
	st := NewStore(time.Minute, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Update(context.Background(), "CA-race", func(s *Session) {
				v := s.OfferIndex
				time.Sleep(time.Microsecond)
				s.OfferIndex = v + 1
			})
		}()
	}
	wg.Wait()

	s, ok := st.Get("CA-race")
	require.True(t, ok)
	assert.Equal(t, 200, s.OfferIndex)
}

func TestDistinctCallsDoNotBlockEachOther(t *testing.T) {
	st := NewStore(time.Minute, nil, nil)

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		st.Update(context.Background(), "CA-slow", func(*Session) {
			close(inside)
			<-release
		})
	}()
	<-inside

	finished := make(chan struct{})
	go func() {
		st.Update(context.Background(), "CA-fast", func(s *Session) { s.OfferIndex = 1 })
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("update of an unrelated call blocked")
	}
	close(release)
	<-done
}

func TestDelete(t *testing.T) {
	mirror := newRecordingMirror()
	st := NewStore(time.Minute, mirror, nil)
	ctx := context.Background()

	st.Update(ctx, "CA1", func(s *Session) { s.OfferIndex = 2 })
	assert.Contains(t, mirror.saved, "CA1")

	assert.True(t, st.Delete(ctx, "CA1"))
	_, ok := st.Get("CA1")
	assert.False(t, ok)
	assert.NotContains(t, mirror.saved, "CA1")

	// unknown and repeated deletes are no-ops
	assert.False(t, st.Delete(ctx, "CA1"))
	assert.False(t, st.Delete(ctx, "never-seen"))
	assert.Equal(t, []string{"CA1"}, mirror.deleted)

	s, created := st.Update(ctx, "CA1", func(*Session) {})
	assert.True(t, created)
	assert.Zero(t, s.OfferIndex)
}

func TestCleanupInactiveSessions(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	mirror := newRecordingMirror()
	st := NewStore(10*time.Minute, mirror, zaptest.NewLogger(t))
	st.now = clock.Now
	ctx := context.Background()

	st.Update(ctx, "old", func(*Session) {})
	clock.Advance(8 * time.Minute)
	st.Update(ctx, "fresh", func(*Session) {})
	clock.Advance(3 * time.Minute)

	evicted := st.CleanupInactiveSessions(ctx)
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, []string{"old"}, mirror.deleted)

	_, ok := st.Get("fresh")
	assert.True(t, ok)
}

func TestCleanupSkipsBusySession(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	st := NewStore(time.Minute, nil, nil)
	st.now = clock.Now
	ctx := context.Background()

	st.Update(ctx, "busy", func(*Session) {})
	clock.Advance(time.Hour)

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		st.Update(ctx, "busy", func(*Session) {
			close(inside)
			<-release
		})
	}()
	<-inside

	assert.Empty(t, st.CleanupInactiveSessions(ctx))
	close(release)
	<-done
	assert.Equal(t, 1, st.Len())
}

func TestCleanupDisabled(t *testing.T) {
	st := NewStore(0, nil, nil)
	st.Update(context.Background(), "CA1", func(*Session) {})
	assert.Nil(t, st.CleanupInactiveSessions(context.Background()))
}

func TestStartCleanupRoutine(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	st := NewStore(time.Minute, nil, nil)
	st.now = clock.Now

	for i := 0; i < 5; i++ {
		st.Update(context.Background(), fmt.Sprintf("CA%d", i), func(*Session) {})
	}
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	evictedCh := make(chan []string, 1)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		st.StartCleanupRoutine(ctx, 5*time.Millisecond, func(ids []string) {
			select {
			case evictedCh <- ids:
			default:
			}
		})
	}()

	select {
	case ids := <-evictedCh:
		assert.Len(t, ids, 5)
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup routine did not run")
	}
	cancel()
	<-stopped
	assert.Zero(t, st.Len())
}

func TestShutdown(t *testing.T) {
	mirror := newRecordingMirror()
	st := NewStore(time.Minute, mirror, nil)
	st.Update(context.Background(), "CA1", func(*Session) {})

	st.Shutdown()
	assert.Zero(t, st.Len())
	assert.True(t, mirror.closed)
}

func TestParseStage(t *testing.T) {
	s, ok := ParseStage("retention_offer")
	assert.True(t, ok)
	assert.Equal(t, StageRetentionOffer, s)

	_, ok = ParseStage("bogus")
	assert.False(t, ok)
	_, ok = ParseStage("")
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	s := newSession("CA1", time.Now())
	s.Stage = StageHumanOffer
	s.OfferIndex = 2
	s.Order = &catalog.Order{ID: "123"}
	s.Turns = 5

	s.Reset()
	assert.Equal(t, StageVerifyOrder, s.Stage)
	assert.Zero(t, s.OfferIndex)
	assert.Nil(t, s.Order)
	assert.Zero(t, s.Turns)
	assert.Equal(t, "CA1", s.CallID)
}
