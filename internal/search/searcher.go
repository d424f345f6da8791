package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwygoda/shopsearch/internal/domain"
)

const (
	DefaultInterval     = 2 * time.Second
	DefaultInitialDelay = time.Second
	DefaultMaxAttempts  = 60
)

// User-visible stage texts and messages.
const (
	StageInitializing = "Initializing"
	StageProcessing   = "Processing..."
	StageCompleted    = "Search completed"
	StageLegacy       = "Searching products..."
	StageLegacyDone   = "Completed"

	msgAuthRequired = "Authentication required"
	msgAuthFailed   = "Authentication failed. Please refresh and try demo mode."
	msgStartFailed  = "Failed to start search"
	msgStatusFailed = "Failed to get search status"
	msgResultFailed = "Failed to get search results"
	msgSearchFailed = "Search failed"
	msgTimeout      = "Search timeout - please try again"
)

var ErrClosed = errors.New("searcher closed")

// Options tunes a Searcher. Zero values select the defaults.
type Options struct {
	Interval     time.Duration
	InitialDelay time.Duration
	MaxAttempts  int
	Scheduler    Scheduler
	History      *domain.HistoryService
	Logger       zerolog.Logger
}

// Searcher submits product searches and polls them to completion.
// At most one session is live at a time; starting a search cancels the previous one.
type Searcher struct {
	backend domain.SearchBackend
	creds   domain.CredentialSource
	store   *Store
	history *domain.HistoryService
	sched   Scheduler
	log     zerolog.Logger

	interval     time.Duration
	initialDelay time.Duration
	maxAttempts  int

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu      sync.Mutex
	current *Session
	closed  bool
	wg      sync.WaitGroup
}

// New creates a Searcher.
func New(backend domain.SearchBackend, creds domain.CredentialSource, opts Options) *Searcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.InitialDelay < 0 {
		opts.InitialDelay = 0
	} else if opts.InitialDelay == 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Scheduler == nil {
		opts.Scheduler = ClockScheduler
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		backend:      backend,
		creds:        creds,
		store:        NewStore(),
		history:      opts.History,
		sched:        opts.Scheduler,
		log:          opts.Logger.With().Str("component", "searcher").Logger(),
		interval:     opts.Interval,
		initialDelay: opts.InitialDelay,
		maxAttempts:  opts.MaxAttempts,
		baseCtx:      ctx,
		baseCancel:   cancel,
	}
}

// State returns the current observable state.
func (s *Searcher) State() domain.State {
	return s.store.Snapshot()
}

// Subscribe observes state transitions. See Store.Subscribe.
func (s *Searcher) Subscribe() (<-chan domain.State, func()) {
	return s.store.Subscribe()
}

// Current returns the live or most recent session, or nil.
func (s *Searcher) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SearchProducts starts a fresh session for req, invalidating any prior one.
// It returns once the backend assigned a job id; polling continues in the
// background until the returned session reaches a terminal phase.
// Every failure is also written to the observable state.
func (s *Searcher) SearchProducts(ctx context.Context, req domain.SearchRequest) (*Session, error) {
	sess, err := s.begin(func(st *domain.State) {
		st.IsLoading = true
		st.CurrentStage = StageInitializing
	})
	if err != nil {
		return nil, err
	}

	h, err := s.submit(ctx, sess, req)
	if err != nil {
		s.fail(sess, err)
		sess.finish()
		return nil, err
	}

	if !s.update(sess, func(st *domain.State) {
		st.JobID = h.ID
		st.Phase = domain.PhaseSubmitted
	}) {
		sess.finish()
		return nil, context.Canceled
	}

	if err := s.history.Start(context.WithoutCancel(ctx), sess.token, h.ID, req); err != nil {
		s.log.Warn().Err(err).Str("session", sess.token).Msg("failed to record search history")
	}

	s.log.Info().
		Str("session", sess.token).
		Str("job_id", h.ID).
		Bool("demo", sess.creds.Demo).
		Msg("polling started")

	s.wg.Add(1)
	go s.poll(sess)
	return sess, nil
}

// SearchLegacy runs a one-shot search against the legacy endpoint.
// It shares the observable state with SearchProducts and supersedes any live session.
func (s *Searcher) SearchLegacy(ctx context.Context, prompt string, numProducts int) (*domain.ResultSet, error) {
	sess, err := s.begin(func(st *domain.State) {
		st.IsLoading = true
		st.CurrentStage = StageLegacy
	})
	if err != nil {
		return nil, err
	}
	defer sess.finish()

	rs, err := s.legacy(ctx, sess, prompt, numProducts)
	if err != nil {
		s.fail(sess, err)
		return nil, err
	}

	if err := s.history.Start(context.WithoutCancel(ctx), sess.token, rs.QueryID, domain.SearchRequest{Query: prompt}); err != nil {
		s.log.Warn().Err(err).Str("session", sess.token).Msg("failed to record search history")
	}
	s.update(sess, func(st *domain.State) {
		st.Data = rs
		st.JobID = rs.QueryID
		st.Phase = domain.PhaseCompleted
		st.IsLoading = false
		st.CurrentStage = StageLegacyDone
		st.Progress = 100
	})
	return rs, nil
}

// FetchResults retrieves the results of a completed job without touching the
// observable state. Callers use it to retry after a ResultFetchError.
func (s *Searcher) FetchResults(ctx context.Context, jobID string) (*domain.ResultSet, error) {
	creds, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	return s.fetchResults(ctx, jobID, creds)
}

// Cancel cancels the live session, if any.
func (s *Searcher) Cancel() {
	if cur := s.Current(); cur != nil {
		cur.Cancel()
	}
}

// Close cancels the live session and waits for its poll loop to exit.
func (s *Searcher) Close() {
	s.mu.Lock()
	s.closed = true
	cur := s.current
	s.mu.Unlock()

	if cur != nil {
		cur.Cancel()
	}
	s.baseCancel()
	s.wg.Wait()
}

// begin creates a session, cancels its predecessor and resets the state.
func (s *Searcher) begin(init func(*domain.State)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.current != nil {
		s.current.Cancel()
	}

	sess := newSession(s.baseCtx, s)
	s.current = sess
	sess.record(s.store.begin(sess.token, init))
	return sess, nil
}

// update applies fn for sess and reports whether it took effect.
func (s *Searcher) update(sess *Session, fn func(*domain.State)) bool {
	st, ok := s.store.apply(sess.token, fn)
	if !ok {
		s.log.Debug().Str("session", sess.token).Msg("discarded update for inactive session")
		return false
	}
	sess.record(st)

	if st.Phase.IsTerminal() {
		s.log.Info().
			Str("session", sess.token).
			Str("job_id", st.JobID).
			Str("phase", string(st.Phase)).
			Str("error", st.Error).
			Int("attempts", st.Attempts).
			Int("results", st.Data.Count()).
			Msg("session finished")
		if st.JobID != "" {
			if err := s.history.Finish(context.Background(), st); err != nil {
				s.log.Warn().Err(err).Str("session", sess.token).Msg("failed to record search outcome")
			}
		}
	}
	return true
}

// fail moves sess to the failed or timed-out phase with err's message.
func (s *Searcher) fail(sess *Session, err error) bool {
	kind := domain.KindOf(err)
	return s.update(sess, func(st *domain.State) {
		st.Phase = domain.PhaseFailed
		if kind == domain.KindTimeout {
			st.Phase = domain.PhaseTimedOut
		}
		st.IsLoading = false
		st.Error = err.Error()
		st.Kind = kind
		if kind == domain.KindValidation || kind == domain.KindAuthRequired || kind == domain.KindSubmission {
			st.CurrentStage = ""
		}
	})
}

func (s *Searcher) credentials(ctx context.Context) (domain.Credentials, error) {
	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		return domain.Credentials{}, &domain.SearchError{Kind: domain.KindAuthRequired, Message: msgAuthRequired, Err: err}
	}
	if !creds.Demo && creds.Token == "" {
		return domain.Credentials{}, &domain.SearchError{Kind: domain.KindAuthRequired, Message: msgAuthRequired}
	}
	return creds, nil
}

// callContext is cancelled when either the caller's ctx or the session ends.
func callContext(ctx context.Context, sess *Session) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(sess.ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}
