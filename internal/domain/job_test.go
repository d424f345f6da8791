package domain

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want JobStatus
	}{
		{name: "pending", in: "pending", want: StatusPending},
		{name: "processing", in: "processing", want: StatusProcessing},
		{name: "completed", in: "completed", want: StatusCompleted},
		{name: "failed", in: "failed", want: StatusFailed},
		{name: "mixed case and spaces", in: " Completed ", want: StatusCompleted},
		{name: "unknown is processing", in: "compleeted", want: StatusProcessing},
		{name: "empty is processing", in: "", want: StatusProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseStatus(tt.in); got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusProcessing.IsTerminal() {
		t.Error("pending/processing must not be terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("completed/failed must be terminal")
	}
}

func TestStatusReport_ValidProgress(t *testing.T) {
	p := func(v int) *int { return &v }

	tests := []struct {
		name   string
		report StatusReport
		want   int
		ok     bool
	}{
		{name: "absent", report: StatusReport{}, ok: false},
		{name: "zero", report: StatusReport{Progress: p(0)}, want: 0, ok: true},
		{name: "in range", report: StatusReport{Progress: p(40)}, want: 40, ok: true},
		{name: "negative", report: StatusReport{Progress: p(-5)}, ok: false},
		{name: "over 100", report: StatusReport{Progress: p(140)}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.report.ValidProgress()
			if ok != tt.ok || got != tt.want {
				t.Errorf("ValidProgress() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPhase_IsTerminal(t *testing.T) {
	for _, p := range []Phase{PhaseCompleted, PhaseFailed, PhaseTimedOut, PhaseCancelled} {
		if !p.IsTerminal() {
			t.Errorf("%q should be terminal", p)
		}
	}
	for _, p := range []Phase{PhaseIdle, PhaseSubmitted, PhasePolling} {
		if p.IsTerminal() {
			t.Errorf("%q should not be terminal", p)
		}
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{name: "valid", query: "gaming laptop"},
		{name: "empty", query: "", wantErr: true},
		{name: "whitespace", query: "   \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SearchRequest{Query: tt.query}.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSearchRequest_FiltersJSON(t *testing.T) {
	if got := (SearchRequest{Query: "x"}).FiltersJSON(); got != "" {
		t.Errorf("FiltersJSON() without filters = %q, want empty", got)
	}
	if got := (SearchRequest{Query: "x", Filters: &Filters{}}).FiltersJSON(); got != "" {
		t.Errorf("FiltersJSON() with zero filters = %q, want empty", got)
	}

	maxPrice := 1500.0
	req := SearchRequest{Query: "x", Filters: &Filters{Category: "laptops", MaxPrice: &maxPrice, Brands: []string{"asus"}}}
	want := `{"category":"laptops","max_price":1500,"brands":["asus"]}`
	if got := req.FiltersJSON(); got != want {
		t.Errorf("FiltersJSON() = %q, want %q", got, want)
	}
}

func TestSearchError_Is(t *testing.T) {
	err := &SearchError{Kind: KindBackendFailure, Message: "no products"}

	if !errors.Is(err, ErrBackendFailure) {
		t.Error("errors.Is should match sentinel of same kind")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("errors.Is should not match sentinel of another kind")
	}
	if err.Error() != "no products" {
		t.Errorf("Error() = %q, want %q", err.Error(), "no products")
	}
	if KindOf(err) != KindBackendFailure {
		t.Errorf("KindOf() = %q, want %q", KindOf(err), KindBackendFailure)
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf() on plain error should be empty")
	}
}

func TestSearchError_Unwrap(t *testing.T) {
	cause := &ResponseError{StatusCode: 502, Detail: "bad gateway"}
	err := &SearchError{Kind: KindStatusFetch, Message: "Failed to get search status", Err: cause}

	var re *ResponseError
	if !errors.As(err, &re) {
		t.Fatal("errors.As should find ResponseError")
	}
	if re.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", re.StatusCode)
	}
}

func TestResultSet_Count(t *testing.T) {
	var nilSet *ResultSet
	if nilSet.Count() != 0 {
		t.Error("nil ResultSet should count 0")
	}
	rs := &ResultSet{Results: []Product{{Name: "a"}, {Name: "b"}}}
	if rs.Count() != 2 {
		t.Errorf("Count() = %d, want 2", rs.Count())
	}
}

func TestState_Err(t *testing.T) {
	if err := (State{Phase: PhaseCompleted}).Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	st := State{Phase: PhaseTimedOut, Kind: KindTimeout, Error: "Search timeout - please try again"}
	err := st.Err()
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Err() = %v, want it to match ErrTimeout", err)
	}
	if err.Error() != st.Error {
		t.Errorf("Err().Error() = %q, want %q", err.Error(), st.Error)
	}
}
