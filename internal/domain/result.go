package domain

import "encoding/json"

// Product is one product card in a result set.
type Product struct {
	Name           string              `json:"name"`
	Price          string              `json:"price"`
	PriceNumeric   *float64            `json:"price_numeric,omitempty"`
	Brand          string              `json:"brand,omitempty"`
	Rating         string              `json:"rating,omitempty"`
	RatingNumeric  *float64            `json:"rating_numeric,omitempty"`
	Reviews        string              `json:"reviews,omitempty"`
	Features       []string            `json:"features,omitempty"`
	ProsCons       map[string][]string `json:"pros_cons,omitempty"`
	Availability   string              `json:"availability,omitempty"`
	SourceURL      string              `json:"source_url,omitempty"`
	ImageURL       string              `json:"image_url,omitempty"`
	Specifications map[string]any      `json:"specifications,omitempty"`
	Category       string              `json:"category,omitempty"`
	MatchScore     float64             `json:"match_score,omitempty"`
}

// ResultSet is the payload of a completed search.
// Raw keeps the undecoded body so callers can read fields this type does not model.
type ResultSet struct {
	QueryID           string          `json:"query_id"`
	Results           []Product       `json:"results"`
	ComparisonSummary string          `json:"comparison_summary,omitempty"`
	Recommendation    string          `json:"recommendation,omitempty"`
	TotalFound        int             `json:"total_found"`
	SearchTimestamp   string          `json:"search_timestamp,omitempty"`
	AppliedFilters    *Filters        `json:"applied_filters,omitempty"`
	SearchStrategy    string          `json:"search_strategy,omitempty"`
	Raw               json.RawMessage `json:"-"`
}

// Count returns the number of products in the set.
func (r *ResultSet) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Results)
}
