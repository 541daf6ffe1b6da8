package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// ReplaceChunks removes all chunks for an object and inserts the given
// ones in a single transaction, so reprocessing never leaves a mix of
// old and new chunks behind.
func (s *documentStore) ReplaceChunks(ctx context.Context, objectID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE object_id = ?", objectID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, object_id, idx, content, strategy, size, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, objectID, chunk.Index, chunk.Content,
			string(chunk.Strategy), chunk.Size, embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves all chunks for an object, ordered by index.
func (s *documentStore) GetChunks(ctx context.Context, objectID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, object_id, idx, content, strategy, size, embedding, metadata
		FROM chunks WHERE object_id = ?
		ORDER BY idx
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DeleteObject removes all chunks for an object identity.
func (s *documentStore) DeleteObject(ctx context.Context, objectID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE object_id = ?", objectID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Query returns the chunks most similar to the vector, best first.
// Similarity is brute-force cosine over every embedded chunk; corpus
// sizes here are thousands of chunks, not millions.
func (s *documentStore) Query(ctx context.Context, vector []float32, limit int) ([]driven.ChunkMatch, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, domain.ErrInvalidInput
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, object_id, idx, content, strategy, size, embedding, metadata
		FROM chunks WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var matches []driven.ChunkMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunkRows(rows)
		if err != nil {
			return nil, err
		}
		if len(chunk.Embedding) != len(vector) {
			continue
		}
		matches = append(matches, driven.ChunkMatch{
			Chunk:      *chunk,
			Similarity: cosine(vector, chunk.Embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// scanChunks scans all chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunkRows(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// scanChunkRows scans a chunk from *sql.Rows.
func scanChunkRows(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var strategy string
	var embeddingBlob []byte
	var metadataJSON sql.NullString

	if err := rows.Scan(&chunk.ID, &chunk.ObjectID, &chunk.Index, &chunk.Content,
		&strategy, &chunk.Size, &embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Strategy = domain.ChunkStrategy(strategy)
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// cosine computes cosine similarity between equal-length vectors.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
