package store

import (
	"context"
	"time"
)

// Store persists completed pipeline runs for later retrieval.
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	DeleteRun(ctx context.Context, id string) error
}

// Run is one persisted pipeline execution. ResultJSON holds the
// serialized output record verbatim.
type Run struct {
	ID             string
	CreatedAt      time.Time
	DialogueCount  int
	DegradedPhases []string
	ResultJSON     string
}
