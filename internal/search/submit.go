package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cwygoda/shopsearch/internal/domain"
)

// submit validates req, captures the session credentials and starts the backend job.
// No network call is made when validation or credential lookup fails.
func (s *Searcher) submit(ctx context.Context, sess *Session, req domain.SearchRequest) (domain.JobHandle, error) {
	if err := req.Validate(); err != nil {
		return domain.JobHandle{}, err
	}
	req.Query = strings.TrimSpace(req.Query)

	creds, err := s.credentials(ctx)
	if err != nil {
		return domain.JobHandle{}, err
	}
	sess.creds = creds

	callCtx, cancel := callContext(ctx, sess)
	defer cancel()

	h, err := s.backend.StartSearch(callCtx, req, creds)
	if err != nil {
		return domain.JobHandle{}, submissionError(err, creds)
	}
	sess.setJobID(h.ID)
	return h, nil
}

func (s *Searcher) legacy(ctx context.Context, sess *Session, prompt string, numProducts int) (*domain.ResultSet, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &domain.SearchError{Kind: domain.KindValidation, Message: "Search query is required"}
	}
	if numProducts <= 0 {
		numProducts = 5
	}

	creds, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	if creds.Demo {
		return nil, &domain.SearchError{Kind: domain.KindAuthRequired, Message: msgAuthRequired}
	}
	sess.creds = creds

	callCtx, cancel := callContext(ctx, sess)
	defer cancel()

	rs, err := s.backend.LegacySearch(callCtx, prompt, numProducts, creds)
	if err != nil {
		var re *domain.ResponseError
		if errors.As(err, &re) {
			return nil, &domain.SearchError{
				Kind:       domain.KindSubmission,
				Message:    fmt.Sprintf("HTTP error! status: %d", re.StatusCode),
				StatusCode: re.StatusCode,
				Err:        err,
			}
		}
		return nil, &domain.SearchError{Kind: domain.KindSubmission, Message: msgStartFailed, Err: err}
	}
	return rs, nil
}

// submissionError classifies a failed start-search call.
func submissionError(err error, creds domain.Credentials) error {
	var re *domain.ResponseError
	if !errors.As(err, &re) {
		return &domain.SearchError{Kind: domain.KindSubmission, Message: msgStartFailed, Err: err}
	}

	if re.StatusCode == http.StatusUnauthorized && !creds.Demo {
		return &domain.SearchError{
			Kind:       domain.KindAuthRequired,
			Message:    msgAuthFailed,
			StatusCode: re.StatusCode,
			Err:        err,
		}
	}

	msg := re.Detail
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", re.StatusCode)
	}
	return &domain.SearchError{
		Kind:       domain.KindSubmission,
		Message:    msg,
		StatusCode: re.StatusCode,
		Err:        err,
	}
}
