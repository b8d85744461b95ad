package session

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region store-struct

// Store keeps per-conversation state in memory. Each session has its own
// lock; turns for one session run one at a time, different sessions run
// concurrently.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	cfg      Config
	now      func() time.Time
}

type entry struct {
	lock  chan struct{} // capacity 1; held for the whole of one turn
	state State
	seen  time.Time
}

// #endregion store-struct

// #region constructor

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultConfig().MaxHistory
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// #endregion constructor

// #region get

// Get returns a copy of the session state, creating an empty one if absent.
func (s *Store) Get(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryLocked(id).state.Clone()
}

// Lookup returns the session state or ErrNotFound. It never creates.
func (s *Store) Lookup(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return State{}, fmt.Errorf("lookup %s: %w", id, ErrNotFound)
	}
	return e.state.Clone(), nil
}

func (s *Store) entryLocked(id string) *entry {
	e, ok := s.sessions[id]
	if !ok {
		now := s.now().UTC()
		e = &entry{
			lock:  make(chan struct{}, 1),
			state: State{Satisfaction: shipping.SatisfactionUnknown, CreatedAt: now, UpdatedAt: now},
			seen:  now,
		}
		s.sessions[id] = e
	}
	return e
}

// #endregion get

// #region update

// Update runs fn against a copy of the session state while holding the
// session lock. The copy is committed only if fn returns nil; on error the
// pre-turn state is kept and returned alongside the error. Waiting for the
// lock honours ctx.
func (s *Store) Update(ctx context.Context, id string, fn func(*State) error) (State, error) {
	e, err := s.acquire(ctx, id)
	if err != nil {
		return State{}, err
	}
	defer func() { <-e.lock }()

	s.mu.Lock()
	work := e.state.Clone()
	s.mu.Unlock()

	if err := s.apply(fn, &work); err != nil {
		if isCorruption(err) {
			s.mu.Lock()
			if s.sessions[id] == e {
				delete(s.sessions, id)
			}
			s.mu.Unlock()
			return State{}, err
		}
		s.mu.Lock()
		prev := e.state.Clone()
		s.mu.Unlock()
		return prev, err
	}

	if over := len(work.History) - s.cfg.MaxHistory; over > 0 {
		work.History = append(work.History[:0:0], work.History[over:]...)
	}
	now := s.now().UTC()
	work.UpdatedAt = now

	s.mu.Lock()
	e.state = work
	e.seen = now
	s.mu.Unlock()
	return work.Clone(), nil
}

// acquire takes the session lock, retrying if the session was ended while
// waiting so the caller always holds the live entry.
func (s *Store) acquire(ctx context.Context, id string) (*entry, error) {
	for {
		s.mu.Lock()
		e := s.entryLocked(id)
		s.mu.Unlock()

		select {
		case e.lock <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		s.mu.Lock()
		live := s.sessions[id] == e
		s.mu.Unlock()
		if live {
			return e, nil
		}
		<-e.lock
	}
}

type corruptionError struct{ cause any }

func (c corruptionError) Error() string { return fmt.Sprintf("%v: %v", ErrSessionCorrupted, c.cause) }
func (c corruptionError) Unwrap() error { return ErrSessionCorrupted }

func isCorruption(err error) bool {
	_, ok := err.(corruptionError)
	return ok
}

func (s *Store) apply(fn func(*State) error, st *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = corruptionError{cause: r}
		}
	}()
	return fn(st)
}

// #endregion update

// #region end

// End discards a session. Returns false if it did not exist.
func (s *Store) End(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// #endregion end

// #region cleanup

// Cleanup removes sessions idle longer than the TTL. Sessions with a turn
// in flight are skipped. Returns the number removed.
func (s *Store) Cleanup() int {
	cutoff := s.now().UTC().Add(-s.cfg.TTL)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.seen.Before(cutoff) {
			continue
		}
		select {
		case e.lock <- struct{}{}:
			delete(s.sessions, id)
			<-e.lock
			removed++
		default:
		}
	}
	return removed
}

// RunJanitor calls Cleanup every interval until ctx ends.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := s.Cleanup()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// #endregion cleanup

// #region stats

// Stats reports counts across live sessions.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	for _, e := range s.sessions {
		st.Sessions++
		st.Turns += len(e.state.History)
		if e.state.LastRecommendation != nil {
			st.WithRecommendation++
		}
		if e.state.PendingClarification != "" {
			st.AwaitingClarification++
		}
	}
	return st
}

// #endregion stats

// #region snapshot

// Snapshot serializes one session's state as JSON.
func (s *Store) Snapshot(id string) ([]byte, error) {
	st, err := s.Lookup(id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

// #endregion snapshot
