package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

func testChunk(id, objectID string, index int, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		ObjectID:  objectID,
		Index:     index,
		Content:   "chunk content",
		Strategy:  domain.StrategyParagraph,
		Size:      13,
		Embedding: embedding,
	}
}

func testInsight(id, objectID string) *domain.InsightRecord {
	return &domain.InsightRecord{
		ID:           id,
		ObjectID:     objectID,
		Category:     domain.CategoryActionItem,
		Title:        "Follow up on the vendor contract",
		Description:  "The vendor contract renewal needs sign-off before month end.",
		Severity:     domain.SeverityMedium,
		Confidence:   0.8,
		DocumentDate: "2025-03-14",
	}
}

func TestDocumentStore_ReplaceAndGetChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("c2", "meetings/a.txt", 1, nil),
		testChunk("c1", "meetings/a.txt", 0, []float32{0.1, 0.2}),
	}
	require.NoError(t, store.ReplaceChunks(ctx, "meetings/a.txt", chunks))

	got, err := store.GetChunks(ctx, "meetings/a.txt")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)
	assert.Equal(t, []float32{0.1, 0.2}, got[0].Embedding)
}

func TestDocumentStore_ReplaceDiscardsOldChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceChunks(ctx, "meetings/a.txt", []domain.Chunk{
		testChunk("old", "meetings/a.txt", 0, nil),
	}))
	require.NoError(t, store.ReplaceChunks(ctx, "meetings/a.txt", []domain.Chunk{
		testChunk("new", "meetings/a.txt", 0, nil),
	}))

	got, err := store.GetChunks(ctx, "meetings/a.txt")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestDocumentStore_DeleteObject(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceChunks(ctx, "meetings/a.txt", []domain.Chunk{
		testChunk("c1", "meetings/a.txt", 0, nil),
	}))
	require.NoError(t, store.DeleteObject(ctx, "meetings/a.txt"))

	got, err := store.GetChunks(ctx, "meetings/a.txt")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocumentStore_QueryOrdersBySimilarity(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceChunks(ctx, "meetings/a.txt", []domain.Chunk{
		testChunk("close", "meetings/a.txt", 0, []float32{0.9, 0.1, 0}),
		testChunk("far", "meetings/a.txt", 1, []float32{0, 1, 0}),
		testChunk("unembedded", "meetings/a.txt", 2, nil),
	}))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 10)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "close", matches[0].Chunk.ID)
	assert.Equal(t, "far", matches[1].Chunk.ID)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestDocumentStore_QueryInvalidInput(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.Query(context.Background(), nil, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Query(context.Background(), []float32{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsightStore_InsertAndListByObject(t *testing.T) {
	store := NewInsightStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testInsight("i1", "meetings/a.txt")))
	require.NoError(t, store.Insert(ctx, testInsight("i2", "meetings/b.txt")))

	got, err := store.ListByObject(ctx, "meetings/a.txt")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestInsightStore_InsertRejectsInvalidRecord(t *testing.T) {
	store := NewInsightStore()

	rec := testInsight("i1", "meetings/a.txt")
	rec.Confidence = 1.5

	err := store.Insert(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsightStore_ListByFilter(t *testing.T) {
	store := NewInsightStore()
	ctx := context.Background()

	older := testInsight("older", "meetings/a.txt")
	older.DocumentDate = "2025-01-10"
	older.Severity = domain.SeverityCritical
	require.NoError(t, store.Insert(ctx, older))

	newer := testInsight("newer", "meetings/b.txt")
	newer.DocumentDate = "2025-03-14"
	require.NoError(t, store.Insert(ctx, newer))

	risk := testInsight("risk", "meetings/c.txt")
	risk.Category = domain.CategoryRisk
	require.NoError(t, store.Insert(ctx, risk))

	all, err := store.ListByFilter(ctx, driven.InsightFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-03-14", all[0].DocumentDate)

	bySeverity, err := store.ListByFilter(ctx, driven.InsightFilter{Severity: domain.SeverityCritical})
	require.NoError(t, err)
	require.Len(t, bySeverity, 1)
	assert.Equal(t, "older", bySeverity[0].ID)

	byCategory, err := store.ListByFilter(ctx, driven.InsightFilter{Category: domain.CategoryRisk})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "risk", byCategory[0].ID)

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	recent, err := store.ListByFilter(ctx, driven.InsightFilter{From: from})
	require.NoError(t, err)
	require.Len(t, recent, 2)
}

func TestInsightStore_FilterByResolution(t *testing.T) {
	store := NewInsightStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testInsight("open", "meetings/a.txt")))
	require.NoError(t, store.Insert(ctx, testInsight("done", "meetings/b.txt")))
	require.NoError(t, store.Resolve(ctx, "done"))

	resolved := true
	got, err := store.ListByFilter(ctx, driven.InsightFilter{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "done", got[0].ID)

	unresolved := false
	got, err = store.ListByFilter(ctx, driven.InsightFilter{Resolved: &unresolved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "open", got[0].ID)
}

func TestInsightStore_ResolveAndAssign(t *testing.T) {
	store := NewInsightStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testInsight("i1", "meetings/a.txt")))

	require.NoError(t, store.Resolve(ctx, "i1"))
	require.NoError(t, store.Assign(ctx, "i1", "Sarah Chen"))

	got, err := store.ListByObject(ctx, "meetings/a.txt")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Resolved)
	assert.Equal(t, "Sarah Chen", got[0].Assignee)

	assert.ErrorIs(t, store.Resolve(ctx, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Assign(ctx, "missing", "x"), domain.ErrNotFound)
}

func TestInsightStore_DeleteByObject(t *testing.T) {
	store := NewInsightStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testInsight("i1", "meetings/a.txt")))
	require.NoError(t, store.Insert(ctx, testInsight("i2", "meetings/a.txt")))
	require.NoError(t, store.Insert(ctx, testInsight("i3", "meetings/b.txt")))

	require.NoError(t, store.DeleteByObject(ctx, "meetings/a.txt"))

	gone, err := store.ListByObject(ctx, "meetings/a.txt")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := store.ListByObject(ctx, "meetings/b.txt")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestSyncStateStore_RoundTrip(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	fresh, err := store.Load(ctx, "pipeline-a")
	require.NoError(t, err)
	assert.True(t, fresh.LastCheckTime.IsZero())

	state := domain.NewSyncState("pipeline-a")
	state.LastCheckTime = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	state.RecordFingerprint("meetings/a.txt", "abc123")
	require.NoError(t, store.Save(ctx, state))

	// Mutating the saved state must not leak into the store.
	state.RecordFingerprint("meetings/b.txt", "def456")

	loaded, err := store.Load(ctx, "pipeline-a")
	require.NoError(t, err)
	assert.True(t, loaded.LastCheckTime.Equal(state.LastCheckTime))
	assert.Equal(t, map[string]string{"meetings/a.txt": "abc123"}, loaded.KnownObjects)
	assert.True(t, store.SupportsKnownObjects())
}

func TestSyncStateStore_SaveInvalidState(t *testing.T) {
	store := NewSyncStateStore()

	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), &domain.SyncState{}), domain.ErrInvalidInput)
}
