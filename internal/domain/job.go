package domain

import "strings"

// JobStatus represents the backend processing state of a search job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// ParseStatus maps a backend status string to a JobStatus.
// Unrecognized values are treated as still processing.
func ParseStatus(s string) JobStatus {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending
	case StatusCompleted:
		return StatusCompleted
	case StatusFailed:
		return StatusFailed
	default:
		return StatusProcessing
	}
}

// IsTerminal returns true if no further transition can happen.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobHandle identifies a submitted search job.
type JobHandle struct {
	ID string
}

// StatusReport is one status payload returned while polling a job.
// Optional fields are nil when the backend omitted them.
type StatusReport struct {
	Status            JobStatus
	Stage             string
	Progress          *int
	ErrorMessage      string
	EstimatedTime     *int
	ScrapingSessionID string
}

// ValidProgress returns the reported progress if it is present and within 0..100.
func (r StatusReport) ValidProgress() (int, bool) {
	if r.Progress == nil {
		return 0, false
	}
	p := *r.Progress
	if p < 0 || p > 100 {
		return 0, false
	}
	return p, true
}
