package search

import (
	"context"
	"errors"

	"github.com/cwygoda/shopsearch/internal/domain"
)

// fetchResults retrieves the result payload of a completed job exactly once.
// Failures are not retried here.
func (s *Searcher) fetchResults(ctx context.Context, jobID string, creds domain.Credentials) (*domain.ResultSet, error) {
	rs, err := s.backend.Results(ctx, jobID, creds)
	if err != nil {
		se := &domain.SearchError{Kind: domain.KindResultFetch, Message: msgResultFailed, Err: err}
		var re *domain.ResponseError
		if errors.As(err, &re) {
			se.StatusCode = re.StatusCode
		}
		return nil, se
	}
	if rs == nil {
		return nil, &domain.SearchError{Kind: domain.KindResultFetch, Message: msgResultFailed}
	}
	return rs, nil
}
