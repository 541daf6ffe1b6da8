package driven

import (
	"context"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// SyncStateStore persists synchronisation watermarks between runs.
type SyncStateStore interface {
	// Load returns the stored state for a pipeline. When no state has
	// been saved yet it returns a fresh state, not an error.
	Load(ctx context.Context, pipelineID string) (*domain.SyncState, error)

	// Save persists the state for a pipeline, replacing any previous one.
	Save(ctx context.Context, state *domain.SyncState) error

	// SupportsKnownObjects reports whether the backend persists the
	// per-object fingerprint map. File-backed stores only keep the
	// watermark, which degrades change detection to timestamp-based.
	SupportsKnownObjects() bool
}
