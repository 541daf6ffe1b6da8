package driving

import (
	"context"
	"time"
)

// SyncOptions tune a synchronisation run.
type SyncOptions struct {
	// Areas restricts the run to the named storage areas. Empty means
	// all configured areas.
	Areas []string

	// MaxObjects caps how many changed objects are processed in one
	// cycle. Zero means no cap. Objects over the cap are picked up on
	// the next cycle.
	MaxObjects int

	// DryRun reports what would be processed without ingesting anything
	// or advancing the watermark.
	DryRun bool

	// Force reprocesses objects even when their content fingerprint is
	// unchanged.
	Force bool
}

// SyncOrchestrator coordinates document synchronisation from object storage.
type SyncOrchestrator interface {
	// Watch polls storage for changes on an interval until the context
	// is cancelled. Blocks for the lifetime of the watch.
	Watch(ctx context.Context, interval time.Duration, opts SyncOptions) error

	// Backfill processes every object regardless of watermark.
	Backfill(ctx context.Context, opts SyncOptions) (*SyncReport, error)

	// RunOnce performs a single incremental cycle.
	RunOnce(ctx context.Context, opts SyncOptions) (*SyncReport, error)

	// ProcessObject ingests a single object by identity ("area/path").
	ProcessObject(ctx context.Context, identity string, opts SyncOptions) (*SyncReport, error)

	// Status returns the current sync status.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncReport summarises a completed cycle.
type SyncReport struct {
	// Discovered is the number of objects listed across areas.
	Discovered int

	// Changed is the number of objects whose fingerprint or timestamp
	// indicated new content.
	Changed int

	// Processed is the number of objects successfully ingested.
	Processed int

	// Deferred is the number of changed objects left for the next cycle
	// because of the per-cycle cap.
	Deferred int

	// Failed maps object identities to the error that stopped them.
	Failed map[string]string

	// Insights is the total number of insight records stored.
	Insights int

	// Duration is the wall time of the cycle.
	Duration time.Duration
}

// SyncStatus represents the current state of synchronisation.
type SyncStatus struct {
	// Running indicates a cycle is currently in progress.
	Running bool

	// LastCheckTime is the stored watermark.
	LastCheckTime time.Time

	// KnownObjects is the number of fingerprinted objects.
	KnownObjects int
}
