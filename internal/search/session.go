package search

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cwygoda/shopsearch/internal/domain"
)

// Session is one polling session, from submission to a terminal phase.
type Session struct {
	token    string
	searcher *Searcher
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once

	// set before the poll loop starts, read-only afterwards
	creds domain.Credentials

	attempts atomic.Int64

	mu    sync.Mutex
	jobID string
	last  domain.State
}

func newSession(parent context.Context, s *Searcher) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		token:    uuid.NewString(),
		searcher: s,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Token returns the value distinguishing this session from any other.
func (s *Session) Token() string { return s.token }

// JobID returns the backend job id, or "" before submission succeeded.
func (s *Session) JobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobID
}

func (s *Session) setJobID(id string) {
	s.mu.Lock()
	s.jobID = id
	s.mu.Unlock()
}

// Attempts returns the number of non-terminal status responses seen so far.
func (s *Session) Attempts() int { return int(s.attempts.Load()) }

// Done is closed once the session will make no further network calls.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the last state this session wrote to the store.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Wait blocks until the session is done and returns its final state.
func (s *Session) Wait(ctx context.Context) (domain.State, error) {
	select {
	case <-s.done:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Cancel tears the session down. Scheduled ticks are dropped and responses
// still in flight are discarded. Cancelling a finished session is a no-op.
func (s *Session) Cancel() {
	s.cancel()
	s.searcher.update(s, func(st *domain.State) {
		st.Phase = domain.PhaseCancelled
		st.IsLoading = false
	})
}

func (s *Session) record(st domain.State) {
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
}

func (s *Session) finish() {
	s.doneOnce.Do(func() {
		s.cancel()
		close(s.done)
	})
}
