package session

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const shardCount = 32

// Mirror receives a copy of every session change. It must not block for
// long: it runs while the call's lock is held.
type Mirror interface {
	Save(ctx context.Context, s Session)
	Delete(ctx context.Context, callIDs ...string)
	Close() error
}

// Store owns every active call's session.
//
// Access to one call is serialized by a per-call lock, so overlapping
// webhooks for the same call never interleave. Different calls only share
// a shard lock that is held for map lookups, never while a turn runs.
type Store struct {
	shards      [shardCount]*shard
	idleTimeout time.Duration
	mirror      Mirror
	logger      *zap.Logger
	now         func() time.Time
}

type shard struct {
	mu    sync.Mutex
	calls map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	sess    Session
	removed bool
}

// NewStore creates a session store. mirror may be nil.
func NewStore(idleTimeout time.Duration, mirror Mirror, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		idleTimeout: idleTimeout,
		mirror:      mirror,
		logger:      logger,
		now:         time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{calls: make(map[string]*entry)}
	}
	return s
}

func (st *Store) shardFor(callID string) *shard {
	return st.shards[xxhash.Sum64String(callID)%shardCount]
}

func (sh *shard) getOrCreate(callID string, now time.Time) (*entry, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if e, ok := sh.calls[callID]; ok {
		return e, false
	}
	e := &entry{sess: newSession(callID, now)}
	sh.calls[callID] = e
	return e, true
}

// Update runs fn on the call's session under the call's lock, creating the
// session first if it does not exist. It returns a copy of the result and
// whether the session was created by this call.
func (st *Store) Update(ctx context.Context, callID string, fn func(s *Session)) (Session, bool) {
	sh := st.shardFor(callID)
	for {
		e, created := sh.getOrCreate(callID, st.now())

		e.mu.Lock()
		if e.removed {
			// deleted while we waited; start over with a fresh entry
			e.mu.Unlock()
			continue
		}

		fn(&e.sess)
		e.sess.LastActivity = st.now()
		snapshot := e.sess

		if st.mirror != nil {
			st.mirror.Save(ctx, snapshot)
		}
		e.mu.Unlock()

		if created {
			st.logger.Debug("session created", zap.String("call_id", callID))
		}
		return snapshot, created
	}
}

// Get returns a copy of the call's session
func (st *Store) Get(callID string) (Session, bool) {
	sh := st.shardFor(callID)
	sh.mu.Lock()
	e, ok := sh.calls[callID]
	sh.mu.Unlock()
	if !ok {
		return Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return Session{}, false
	}
	return e.sess, true
}

// Delete removes the call's session. Unknown calls are a no-op.
func (st *Store) Delete(ctx context.Context, callID string) bool {
	sh := st.shardFor(callID)
	sh.mu.Lock()
	e, ok := sh.calls[callID]
	if ok {
		delete(sh.calls, callID)
	}
	sh.mu.Unlock()

	if !ok {
		return false
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()

	if st.mirror != nil {
		st.mirror.Delete(ctx, callID)
	}
	st.logger.Debug("session deleted", zap.String("call_id", callID))
	return true
}

// Len returns the number of active sessions
func (st *Store) Len() int {
	n := 0
	for _, sh := range st.shards {
		sh.mu.Lock()
		n += len(sh.calls)
		sh.mu.Unlock()
	}
	return n
}

// CleanupInactiveSessions evicts sessions idle longer than the idle timeout
// and returns the evicted call ids. Sessions busy with a turn are skipped.
func (st *Store) CleanupInactiveSessions(ctx context.Context) []string {
	if st.idleTimeout <= 0 {
		return nil
	}

	now := st.now()
	var evicted []string
	for _, sh := range st.shards {
		sh.mu.Lock()
		for id, e := range sh.calls {
			if !e.mu.TryLock() {
				continue
			}
			if now.Sub(e.sess.LastActivity) > st.idleTimeout {
				e.removed = true
				delete(sh.calls, id)
				evicted = append(evicted, id)
			}
			e.mu.Unlock()
		}
		sh.mu.Unlock()
	}

	if len(evicted) > 0 {
		if st.mirror != nil {
			st.mirror.Delete(ctx, evicted...)
		}
		st.logger.Info("evicted idle sessions",
			zap.Int("count", len(evicted)),
			zap.Duration("idle_timeout", st.idleTimeout))
	}
	return evicted
}

// StartCleanupRoutine evicts idle sessions every interval until ctx is
// done. onEvict, if set, is called with each batch of evicted ids.
func (st *Store) StartCleanupRoutine(ctx context.Context, interval time.Duration, onEvict func([]string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := st.CleanupInactiveSessions(ctx); len(ids) > 0 && onEvict != nil {
				onEvict(ids)
			}
		}
	}
}

// Shutdown drops all sessions and closes the mirror
func (st *Store) Shutdown() {
	for _, sh := range st.shards {
		sh.mu.Lock()
		for id, e := range sh.calls {
			e.mu.Lock()
			e.removed = true
			e.mu.Unlock()
			delete(sh.calls, id)
		}
		sh.mu.Unlock()
	}

	if st.mirror != nil {
		if err := st.mirror.Close(); err != nil {
			st.logger.Warn("failed to close session mirror", zap.Error(err))
		}
	}
}
