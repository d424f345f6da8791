package search

import (
	"github.com/cwygoda/shopsearch/internal/domain"
)

// poll runs the tick loop for sess until a terminal phase or cancellation.
// Each tick completes before the next one is scheduled.
func (s *Searcher) poll(sess *Session) {
	defer s.wg.Done()
	defer sess.finish()

	wait := s.initialDelay
	for {
		select {
		case <-sess.ctx.Done():
			s.log.Debug().Str("session", sess.token).Msg("poll loop cancelled")
			return
		case <-s.sched.After(wait):
		}

		if !s.tick(sess) {
			return
		}
		wait = s.interval
	}
}

// tick issues one status request and applies the outcome.
// It returns false once the session must not be polled again.
func (s *Searcher) tick(sess *Session) bool {
	if !s.update(sess, func(st *domain.State) { st.Phase = domain.PhasePolling }) {
		return false
	}

	jobID := sess.JobID()
	report, err := s.backend.Status(sess.ctx, jobID, sess.creds)
	if sess.ctx.Err() != nil {
		return false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("status check failed")
		s.fail(sess, &domain.SearchError{Kind: domain.KindStatusFetch, Message: msgStatusFailed, Err: err})
		return false
	}

	s.log.Debug().
		Str("job_id", jobID).
		Str("status", string(report.Status)).
		Str("stage", report.Stage).
		Msg("status received")

	switch report.Status {
	case domain.StatusCompleted:
		if !s.update(sess, progressFrom(report)) {
			return false
		}
		s.complete(sess)
		return false

	case domain.StatusFailed:
		msg := report.ErrorMessage
		if msg == "" {
			msg = msgSearchFailed
		}
		apply := progressFrom(report)
		s.update(sess, func(st *domain.State) {
			apply(st)
			st.Phase = domain.PhaseFailed
			st.IsLoading = false
			st.Error = msg
			st.Kind = domain.KindBackendFailure
		})
		return false

	default:
		n := int(sess.attempts.Add(1))
		timedOut := n >= s.maxAttempts
		apply := progressFrom(report)
		if !s.update(sess, func(st *domain.State) {
			apply(st)
			st.Attempts = n
			if timedOut {
				st.Phase = domain.PhaseTimedOut
				st.IsLoading = false
				st.Error = msgTimeout
				st.Kind = domain.KindTimeout
			}
		}) {
			return false
		}
		return !timedOut
	}
}

// complete fetches the results of a completed job and finishes the session.
func (s *Searcher) complete(sess *Session) {
	jobID := sess.JobID()
	rs, err := s.fetchResults(sess.ctx, jobID, sess.creds)
	if sess.ctx.Err() != nil {
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("result fetch failed")
		s.fail(sess, err)
		return
	}

	s.update(sess, func(st *domain.State) {
		st.Data = rs
		st.Phase = domain.PhaseCompleted
		st.IsLoading = false
		st.CurrentStage = StageCompleted
		st.Progress = 100
	})
}

// progressFrom returns a mutation copying stage and progress from r.
// Absent or out-of-range fields keep the last known value.
func progressFrom(r domain.StatusReport) func(*domain.State) {
	return func(st *domain.State) {
		if r.Stage != "" {
			st.CurrentStage = r.Stage
		} else if st.CurrentStage == "" || st.CurrentStage == StageInitializing {
			st.CurrentStage = StageProcessing
		}
		if p, ok := r.ValidProgress(); ok {
			st.Progress = p
		}
	}
}
