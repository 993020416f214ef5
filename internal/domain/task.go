package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a queued chart computation
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobReady      JobStatus = "ready"
	JobFailed     JobStatus = "failed"
)

// IsTerminal reports whether the job will not change state again
func (s JobStatus) IsTerminal() bool {
	return s == JobReady || s == JobFailed
}

// ComputeJob is one asynchronous request to run the chart pipeline
type ComputeJob struct {
	ID        uuid.UUID
	ChartID   uuid.UUID
	Force     bool
	Status    JobStatus
	Attempts  int
	Outcome   string // computed or skipped once ready
	LastError string // empty unless a run failed
	CreatedAt time.Time
	UpdatedAt time.Time
}
