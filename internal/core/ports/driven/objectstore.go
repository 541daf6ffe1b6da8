package driven

import (
	"context"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// ObjectStorage lists and fetches raw objects from watched storage areas.
//
// Implementations may include:
//   - Supabase/S3-compatible storage over HTTP
//   - A local directory tree (each area a subdirectory)
type ObjectStorage interface {
	// List returns the refs of all objects in an area.
	List(ctx context.Context, area string) ([]domain.ObjectRef, error)

	// Download fetches an object's raw bytes.
	Download(ctx context.Context, area, path string) ([]byte, error)

	// PublicURL returns a stable URL for an object. Purely informational;
	// the pipeline stores it as chunk metadata.
	PublicURL(area, path string) string
}

// ChangeNotifier is an optional extension to ObjectStorage. When the backend
// can push change events (e.g. a local directory watched with fsnotify), the
// watch loop uses them to trigger an immediate detection cycle instead of
// waiting out the polling interval. Detection itself stays list-based, so a
// missed event is only a latency cost, never a correctness one.
type ChangeNotifier interface {
	// Notifications returns a channel that receives an object identity
	// whenever the backend observes a change. The channel is closed when
	// ctx is cancelled.
	Notifications(ctx context.Context) (<-chan string, error)
}
