// Package eventstore persists build lifecycle events so the daemon can
// answer "what happened in the last builds" without keeping state in memory.
package eventstore

import (
	"context"
	"time"
)

// Well-known event types appended by the build runner.
const (
	EventBuildStarted   = "build.started"
	EventBuildCompleted = "build.completed"
	EventBuildFailed    = "build.failed"
	EventStageStarted   = "stage.started"
	EventStageCompleted = "stage.completed"
	EventStageFailed    = "stage.failed"
)

// Event is one recorded build event.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

// Store persists and retrieves build events.
type Store interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)
	LatestBuilds(ctx context.Context, limit int) ([]BuildSummary, error)
	Close() error
}

// BuildSummary is a per-build projection over the event log.
type BuildSummary struct {
	BuildID    string    `json:"build_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Outcome    string    `json:"outcome"` // running|success|failed
	Events     int       `json:"events"`
}
