package driven

import (
	"context"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// ChunkMatch is a chunk returned from a similarity query with its score.
type ChunkMatch struct {
	Chunk      domain.Chunk
	Similarity float64
}

// DocumentStore persists chunks and their vectors.
type DocumentStore interface {
	// ReplaceChunks atomically removes all chunks stored for an object
	// identity and inserts the given ones. Reprocessing an object must
	// never leave a mix of old and new chunks behind, so implementations
	// back this with a transaction where the storage supports one.
	ReplaceChunks(ctx context.Context, objectID string, chunks []domain.Chunk) error

	// GetChunks returns all chunks for an object, ordered by index.
	GetChunks(ctx context.Context, objectID string) ([]domain.Chunk, error)

	// DeleteObject removes all chunks for an object identity.
	DeleteObject(ctx context.Context, objectID string) error

	// Query returns the chunks most similar to the given vector,
	// best first, at most limit results.
	Query(ctx context.Context, vector []float32, limit int) ([]ChunkMatch, error)
}
