// Package memory provides in-memory implementations of the storage ports.
// Nothing is persisted; state lives for the lifetime of the process. Used
// in tests and for ad-hoc runs where a database is not wanted.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.InsightStore   = (*InsightStore)(nil)
	_ driven.SyncStateStore = (*SyncStateStore)(nil)
)

// DocumentStore keeps chunks in a map keyed by object identity.
type DocumentStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{chunks: make(map[string][]domain.Chunk)}
}

// ReplaceChunks swaps the stored chunks for an object.
func (s *DocumentStore) ReplaceChunks(_ context.Context, objectID string, chunks []domain.Chunk) error {
	if objectID == "" {
		return fmt.Errorf("%w: object ID is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Index < stored[j].Index })
	s.chunks[objectID] = stored
	return nil
}

// GetChunks returns the chunks for an object, ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, objectID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chunks[objectID]
	result := make([]domain.Chunk, len(stored))
	copy(result, stored)
	return result, nil
}

// DeleteObject removes all chunks for an object.
func (s *DocumentStore) DeleteObject(_ context.Context, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chunks, objectID)
	return nil
}

// Query scans every embedded chunk and returns the most similar ones.
func (s *DocumentStore) Query(_ context.Context, vector []float32, limit int) ([]driven.ChunkMatch, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: query requires a vector and a positive limit", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []driven.ChunkMatch
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if len(chunk.Embedding) != len(vector) {
				continue
			}
			matches = append(matches, driven.ChunkMatch{
				Chunk:      chunk,
				Similarity: cosine(vector, chunk.Embedding),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// cosine computes cosine similarity between two equal-length vectors.
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

// InsightStore keeps insight records in a slice guarded by a mutex.
type InsightStore struct {
	mu      sync.RWMutex
	records []domain.InsightRecord
}

// NewInsightStore creates an empty in-memory insight store.
func NewInsightStore() *InsightStore {
	return &InsightStore{}
}

// Insert stores a validated record.
func (s *InsightStore) Insert(_ context.Context, rec *domain.InsightRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", domain.ErrInvalidInput)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, stored)
	return nil
}

// ListByObject returns all insights for a source document.
func (s *InsightStore) ListByObject(_ context.Context, objectID string) ([]domain.InsightRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.InsightRecord
	for _, rec := range s.records {
		if rec.ObjectID == objectID {
			result = append(result, rec)
		}
	}
	return result, nil
}

// ListByFilter returns insights matching the filter, newest document first.
func (s *InsightStore) ListByFilter(_ context.Context, filter driven.InsightFilter) ([]domain.InsightRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.InsightRecord
	for _, rec := range s.records {
		if filter.Category != "" && rec.Category != filter.Category {
			continue
		}
		if filter.Severity != "" && rec.Severity != filter.Severity {
			continue
		}
		if filter.Resolved != nil && rec.Resolved != *filter.Resolved {
			continue
		}
		if !filter.From.IsZero() && rec.DocumentDate < filter.From.Format("2006-01-02") {
			continue
		}
		if !filter.To.IsZero() && rec.DocumentDate > filter.To.Format("2006-01-02") {
			continue
		}
		result = append(result, rec)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DocumentDate != result[j].DocumentDate {
			return result[i].DocumentDate > result[j].DocumentDate
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Resolve marks an insight as resolved.
func (s *InsightStore) Resolve(_ context.Context, id string) error {
	return s.update(id, func(rec *domain.InsightRecord) { rec.Resolved = true })
}

// Assign sets the assignee on an insight.
func (s *InsightStore) Assign(_ context.Context, id, assignee string) error {
	return s.update(id, func(rec *domain.InsightRecord) { rec.Assignee = assignee })
}

// DeleteByObject removes all insights for a source document.
func (s *InsightStore) DeleteByObject(_ context.Context, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ObjectID != objectID {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

func (s *InsightStore) update(id string, apply func(*domain.InsightRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			apply(&s.records[i])
			return nil
		}
	}
	return fmt.Errorf("insight %s: %w", id, domain.ErrNotFound)
}

// SyncStateStore keeps sync states in a map keyed by pipeline ID.
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[string]*domain.SyncState
}

// NewSyncStateStore creates an empty in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{states: make(map[string]*domain.SyncState)}
}

// Load returns the stored state for a pipeline, or a fresh one.
func (s *SyncStateStore) Load(_ context.Context, pipelineID string) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if state, ok := s.states[pipelineID]; ok {
		return state.Clone(), nil
	}
	return domain.NewSyncState(pipelineID), nil
}

// Save persists the state for a pipeline.
func (s *SyncStateStore) Save(_ context.Context, state *domain.SyncState) error {
	if state == nil || state.PipelineID == "" {
		return fmt.Errorf("%w: sync state requires a pipeline ID", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.PipelineID] = state.Clone()
	return nil
}

// SupportsKnownObjects reports that the fingerprint map is kept.
func (s *SyncStateStore) SupportsKnownObjects() bool {
	return true
}
