package domain

import "time"

// SessionRecord is the ledger entry of the most recent session.
type SessionRecord struct {
	ID          string
	PoolName    string
	Username    string
	Endpoint    string
	Outcome     OutcomeKind
	Code        StatusCode
	StartedAt   time.Time
	FinishedAt  time.Time
	LaunchedAt  time.Time
	LaunchError string
}

func (r SessionRecord) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}
