package domain

import "time"

// HistoryEntry records one submission and how it ended.
type HistoryEntry struct {
	Session     string
	JobID       string
	Query       string
	Filters     string
	Phase       Phase
	Error       string
	ResultCount int
	CreatedAt   time.Time
	FinishedAt  *time.Time
}

// Finished returns true once the session reached a terminal phase.
func (h *HistoryEntry) Finished() bool {
	return h.FinishedAt != nil && h.Phase.IsTerminal()
}
