// Package record keeps a history of build runs in Postgres. Recording is an
// optional collaborator of the dispatcher: builds work without it.
package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/source"
)

// Status represents the build record status as a string.
type Status string

const (
	// StatusPending indicates that the build hasn't started yet.
	StatusPending Status = "pending"
	// StatusRunning indicates that the build is currently running.
	StatusRunning Status = "running"
	// StatusCompleted indicates that the build published its artifacts.
	StatusCompleted Status = "completed"
	// StatusFailed indicates that the build failed before publishing.
	StatusFailed Status = "failed"
)

var statuses = map[Status]struct{}{
	StatusPending:   {},
	StatusRunning:   {},
	StatusCompleted: {},
	StatusFailed:    {},
}

// StatusFromString converts a string to a Status and checks if it is a
// known status. It returns the Status and a boolean indicating whether the
// status is known.
func StatusFromString(s string) (status Status, known bool) {
	status = Status(s)
	_, known = statuses[status]
	return status, known
}

// Record is one build run.
type Record struct {
	ID         uuid.UUID
	OutputName string
	SourceKind source.Kind
	Status     Status
	Stderr     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
