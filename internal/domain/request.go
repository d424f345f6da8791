package domain

import (
	"encoding/json"
	"strings"
)

// Filters narrows a product search. Values are passed through to the backend unvalidated.
type Filters struct {
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Brands   []string `json:"brands,omitempty"`
	UseCase  string   `json:"use_case,omitempty"`
	Features []string `json:"features,omitempty"`
}

// IsZero reports whether no filter is set.
func (f *Filters) IsZero() bool {
	if f == nil {
		return true
	}
	return f.Category == "" && f.MinPrice == nil && f.MaxPrice == nil &&
		len(f.Brands) == 0 && f.UseCase == "" && len(f.Features) == 0
}

// SearchRequest is the caller-composed query for one submission.
type SearchRequest struct {
	Query      string   `json:"query"`
	MaxResults int      `json:"max_results,omitempty"`
	Filters    *Filters `json:"filters,omitempty"`
}

// Validate checks that the query is non-empty after trimming.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &SearchError{Kind: KindValidation, Message: "Search query is required"}
	}
	return nil
}

// FiltersJSON returns the filters encoded as JSON, or an empty string when unset.
func (r SearchRequest) FiltersJSON() string {
	if r.Filters.IsZero() {
		return ""
	}
	b, err := json.Marshal(r.Filters)
	if err != nil {
		return ""
	}
	return string(b)
}
