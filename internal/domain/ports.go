package domain

import "context"

// Credentials are read once per submission and held for the whole session.
type Credentials struct {
	Token string
	Demo  bool
}

// SearchBackend is the driven port for the remote search service.
type SearchBackend interface {
	StartSearch(ctx context.Context, req SearchRequest, creds Credentials) (JobHandle, error)
	Status(ctx context.Context, jobID string, creds Credentials) (StatusReport, error)
	Results(ctx context.Context, jobID string, creds Credentials) (*ResultSet, error)
	LegacySearch(ctx context.Context, prompt string, numProducts int, creds Credentials) (*ResultSet, error)
}

// CredentialSource supplies the credential for a new session.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// ModeStore persists the demo-mode flag between sessions.
type ModeStore interface {
	DemoMode(ctx context.Context) (bool, error)
	SetDemoMode(ctx context.Context, on bool) error
}

// HistoryRepository is the driven port for local search history.
type HistoryRepository interface {
	Record(ctx context.Context, entry HistoryEntry) error
	Finish(ctx context.Context, session string, phase Phase, errMsg string, resultCount int) error
	Get(ctx context.Context, session string) (*HistoryEntry, error)
	List(ctx context.Context, limit int) ([]HistoryEntry, error)
}
