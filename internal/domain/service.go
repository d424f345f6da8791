package domain

import (
	"context"
	"time"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// HistoryService records submissions and their outcomes.
// A nil *HistoryService is valid and records nothing.
type HistoryService struct {
	repo HistoryRepository
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(repo HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// Start records a new submission.
func (s *HistoryService) Start(ctx context.Context, session, jobID string, req SearchRequest) error {
	if s == nil {
		return nil
	}
	return s.repo.Record(ctx, HistoryEntry{
		Session:   session,
		JobID:     jobID,
		Query:     req.Query,
		Filters:   req.FiltersJSON(),
		Phase:     PhaseSubmitted,
		CreatedAt: time.Now(),
	})
}

// Finish stores the terminal outcome of a session.
func (s *HistoryService) Finish(ctx context.Context, st State) error {
	if s == nil || !st.Phase.IsTerminal() {
		return nil
	}
	return s.repo.Finish(ctx, st.Session, st.Phase, st.Error, st.Data.Count())
}

// Get retrieves one entry by session token.
func (s *HistoryService) Get(ctx context.Context, session string) (*HistoryEntry, error) {
	if s == nil {
		return nil, ErrHistoryNotFound
	}
	return s.repo.Get(ctx, session)
}

// Recent lists the latest entries, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.List(ctx, limit)
}
