package driven

import (
	"context"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// Chunker splits extracted document text into chunks for embedding and
// retrieval. Implementations pick a strategy from the content's shape.
type Chunker interface {
	// Chunk splits text into ordered chunks for an object. The media
	// type hints at the strategy (transcripts chunk by speaker turn).
	Chunk(ctx context.Context, objectID, mediaType, text string) ([]domain.Chunk, error)
}
