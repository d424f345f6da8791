package domain

import "time"

// Phase is the client-side lifecycle of a polling session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSubmitted Phase = "submitted"
	PhasePolling   Phase = "polling"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
	PhaseTimedOut  Phase = "timed_out"
	PhaseCancelled Phase = "cancelled"
)

// IsTerminal returns true for phases that end a session.
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseCompleted, PhaseFailed, PhaseTimedOut, PhaseCancelled:
		return true
	}
	return false
}

// State is the read model exposed to presentation layers.
type State struct {
	Data         *ResultSet `json:"data"`
	IsLoading    bool       `json:"is_loading"`
	Error        string     `json:"error,omitempty"`
	Kind         ErrorKind  `json:"error_kind,omitempty"`
	CurrentStage string     `json:"current_stage"`
	Progress     int        `json:"progress"`
	JobID        string     `json:"job_id,omitempty"`
	Phase        Phase      `json:"phase"`
	Session      string     `json:"session,omitempty"`
	Attempts     int        `json:"attempts"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Err returns the failure recorded in the state as a *SearchError, or nil.
func (s State) Err() error {
	if s.Kind == "" {
		return nil
	}
	return &SearchError{Kind: s.Kind, Message: s.Error}
}
