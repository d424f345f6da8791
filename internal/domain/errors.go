package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies search failures.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthRequired   ErrorKind = "auth_required"
	KindSubmission     ErrorKind = "submission"
	KindStatusFetch    ErrorKind = "status_fetch"
	KindBackendFailure ErrorKind = "backend_failure"
	KindResultFetch    ErrorKind = "result_fetch"
	KindTimeout        ErrorKind = "timeout"
)

// Sentinels for errors.Is. They match any SearchError of the same kind.
var (
	ErrValidation     = &SearchError{Kind: KindValidation}
	ErrAuthRequired   = &SearchError{Kind: KindAuthRequired}
	ErrSubmission     = &SearchError{Kind: KindSubmission}
	ErrStatusFetch    = &SearchError{Kind: KindStatusFetch}
	ErrBackendFailure = &SearchError{Kind: KindBackendFailure}
	ErrResultFetch    = &SearchError{Kind: KindResultFetch}
	ErrTimeout        = &SearchError{Kind: KindTimeout}
)

var ErrHistoryNotFound = errors.New("history entry not found")

// SearchError is a user-displayable search failure.
type SearchError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Is matches on kind so sentinels work with wrapped errors.
func (e *SearchError) Is(target error) bool {
	t, ok := target.(*SearchError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of a SearchError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// ResponseError is a non-2xx answer from the backend.
type ResponseError struct {
	StatusCode int
	Detail     string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}
