package search

import (
	"sync"
	"time"

	"github.com/cwygoda/shopsearch/internal/domain"
)

// Store holds the observable search state.
// Every mutation is tagged with a session token; mutations for any token
// other than the current one, or after a terminal phase, are discarded.
type Store struct {
	mu      sync.Mutex
	state   domain.State
	subs    map[int]chan domain.State
	nextSub int
	now     func() time.Time
}

// NewStore creates an idle store.
func NewStore() *Store {
	return &Store{
		state: domain.State{Phase: domain.PhaseIdle},
		subs:  make(map[int]chan domain.State),
		now:   time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that receives a snapshot after every transition,
// starting with the current one. A slow reader skips intermediate snapshots but
// always sees the latest. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan domain.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.State, 1)
	ch <- s.state
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// begin installs token as the current session and resets the state.
func (s *Store) begin(token string, init func(*domain.State)) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.State{Phase: domain.PhaseIdle, Session: token}
	if init != nil {
		init(&s.state)
	}
	s.state.Session = token
	s.state.UpdatedAt = s.now()
	s.publish()
	return s.state
}

// apply mutates the state on behalf of token.
// It reports false, leaving the state untouched, when token is stale or the
// session already reached a terminal phase.
func (s *Store) apply(token string, fn func(*domain.State)) (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Session != token || s.state.Phase.IsTerminal() {
		return s.state, false
	}
	fn(&s.state)
	s.state.Session = token
	s.state.UpdatedAt = s.now()
	s.publish()
	return s.state, true
}

// publish must be called with mu held.
func (s *Store) publish() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}
