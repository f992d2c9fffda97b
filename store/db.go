package store

import (
	"time"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// GetConfig returns the persisted policy, or nil when none has been
	// saved yet.
	GetConfig() (*config.Blocker, error)
	// SaveConfig overwrites the persisted policy.
	SaveConfig(cfg *config.Blocker) error
	// GetRuntime returns the persisted runtime record, coercing corrupt
	// or old-schema data to safe defaults rather than failing.
	GetRuntime() (models.Runtime, error)
	// SaveRuntime overwrites the persisted runtime record.
	SaveRuntime(rt models.Runtime) error
	// AppendDecision records an evaluated navigation for reporting.
	// Decisions evaluated at the same instant are all retained.
	AppendDecision(snap models.DecisionSnapshot, at time.Time) error
	// GetDecisions returns recorded decisions within the time bounds.
	GetDecisions(
		startTime, endTime time.Time,
	) ([]models.DecisionSnapshot, error)
	// DeleteDecisions removes all recorded decisions within the bounds.
	DeleteDecisions(startTime, endTime time.Time) error
	// Close ends the database connection.
	Close() error
	// Open begins a database connection.
	Open() error
}
