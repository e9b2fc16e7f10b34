// Package store persists check run history in SQLite with embedded
// goose migrations.
package store

import (
	"time"

	"github.com/leapstack-labs/dqcheck/pkg/checks"
)

// Run is one recorded evaluation of a table against a rule set.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Engine     string    `json:"engine"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	Violations int       `json:"violations"`
	Errors     int       `json:"errors"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence interface for run history.
type Store interface {
	SaveRun(run *Run, report checks.Report) error
	GetRun(id string) (*Run, checks.Report, error)
	ListRuns(limit int) ([]*Run, error)
	Close() error
}
