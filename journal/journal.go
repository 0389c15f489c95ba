// Package journal records offload lifecycle transitions for post-mortem
// diagnostics.
//
// The journal is strictly observational: the lifecycle manager writes
// entries best-effort and never fails an operation because the journal
// could not be written.
package journal

import (
	"context"
	"time"
)

// Entry is one recorded lifecycle transition.
type Entry struct {
	// At is when the transition happened. The zero value means "now".
	At time.Time
	// Op names the transition: bind, verifier-prep, translate,
	// destroy, or sweep.
	Op string
	// ProgramID is the program's external identifier at the time of
	// the transition (0 once invalidated).
	ProgramID uint32
	// ProgramName is the program's name.
	ProgramName string
	// DeviceIndex is the bound device's index.
	DeviceIndex int
	// Detail carries optional free-form context.
	Detail string
	// Err holds the error text for transitions that failed or were
	// logged-and-continued, empty otherwise.
	Err string
}

// Journal persists lifecycle entries.
type Journal interface {
	// Record appends one entry.
	Record(ctx context.Context, e Entry) error
	// List returns all entries in append order.
	List(ctx context.Context) ([]Entry, error)
	// Close releases the journal's resources.
	Close() error
}
