package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testChunk(objectID string, index int, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        objectID + "-" + string(rune('a'+index)),
		ObjectID:  objectID,
		Index:     index,
		Content:   content,
		Strategy:  domain.StrategyParagraph,
		Size:      len(content),
		Embedding: embedding,
		Metadata:  map[string]any{"header": "Intro"},
	}
}

func testInsight(id, objectID string) *domain.InsightRecord {
	return &domain.InsightRecord{
		ID:           id,
		ObjectID:     objectID,
		Category:     domain.CategoryActionItem,
		Title:        "Send revised SOW to the client",
		Description:  "The statement of work needs the new milestones before Friday.",
		Severity:     domain.SeverityHigh,
		Confidence:   0.9,
		Assignee:     "Marcus Webb",
		DueDate:      "2025-04-04",
		DocumentDate: "2025-03-14",
		Quotes:       []string{"get it out before Friday"},
		Stakeholders: []string{"Marcus Webb", "Sarah Chen"},
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		Metadata:     map[string]any{"doc_title": "budget sync"},
	}
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "docsight.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

// ==================== Document Store ====================

func TestDocumentStore_ReplaceAndGetChunks(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("meetings/sync.txt", 0, "first chunk", []float32{0.1, 0.2, 0.3}),
		testChunk("meetings/sync.txt", 1, "second chunk", nil),
	}
	require.NoError(t, docs.ReplaceChunks(ctx, "meetings/sync.txt", chunks))

	got, err := docs.GetChunks(ctx, "meetings/sync.txt")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "first chunk", got[0].Content)
	assert.Equal(t, domain.StrategyParagraph, got[0].Strategy)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got[0].Embedding)
	assert.Equal(t, "Intro", got[0].Metadata["header"])
	assert.Nil(t, got[1].Embedding)
}

func TestDocumentStore_ReplaceChunksDiscardsOldOnes(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	first := []domain.Chunk{
		testChunk("docs/plan.md", 0, "old a", nil),
		testChunk("docs/plan.md", 1, "old b", nil),
		testChunk("docs/plan.md", 2, "old c", nil),
	}
	require.NoError(t, docs.ReplaceChunks(ctx, "docs/plan.md", first))

	second := []domain.Chunk{testChunk("docs/plan.md", 0, "new only", nil)}
	second[0].ID = "replacement"
	require.NoError(t, docs.ReplaceChunks(ctx, "docs/plan.md", second))

	got, err := docs.GetChunks(ctx, "docs/plan.md")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new only", got[0].Content)
}

func TestDocumentStore_ReplaceChunksDoesNotTouchOtherObjects(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.ReplaceChunks(ctx, "a/one.txt", []domain.Chunk{testChunk("a/one.txt", 0, "one", nil)}))
	require.NoError(t, docs.ReplaceChunks(ctx, "a/two.txt", []domain.Chunk{testChunk("a/two.txt", 0, "two", nil)}))

	require.NoError(t, docs.ReplaceChunks(ctx, "a/one.txt", nil))

	got, err := docs.GetChunks(ctx, "a/two.txt")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	gone, err := docs.GetChunks(ctx, "a/one.txt")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestDocumentStore_DeleteObject(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.ReplaceChunks(ctx, "a/doc.txt", []domain.Chunk{testChunk("a/doc.txt", 0, "text", nil)}))
	require.NoError(t, docs.DeleteObject(ctx, "a/doc.txt"))

	got, err := docs.GetChunks(ctx, "a/doc.txt")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocumentStore_QueryOrdersBySimilarity(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("a/doc.txt", 0, "about budget", []float32{1, 0, 0}),
		testChunk("a/doc.txt", 1, "about hiring", []float32{0, 1, 0}),
		testChunk("a/doc.txt", 2, "budget again", []float32{0.9, 0.1, 0}),
		testChunk("a/doc.txt", 3, "no embedding", nil),
	}
	require.NoError(t, docs.ReplaceChunks(ctx, "a/doc.txt", chunks))

	matches, err := docs.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "about budget", matches[0].Chunk.Content)
	assert.Equal(t, "budget again", matches[1].Chunk.Content)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestDocumentStore_QueryInvalidInput(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	_, err := docs.Query(ctx, nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = docs.Query(ctx, []float32{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== Insight Store ====================

func TestInsightStore_InsertAndListByObject(t *testing.T) {
	store := setupTestStore(t)
	insights := store.InsightStore()
	ctx := context.Background()

	rec := testInsight("ins-1", "meetings/sync.txt")
	fin := 12000.0
	rec.FinancialImpact = &fin
	require.NoError(t, insights.Insert(ctx, rec))

	got, err := insights.ListByObject(ctx, "meetings/sync.txt")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.Title, got[0].Title)
	assert.Equal(t, domain.CategoryActionItem, got[0].Category)
	assert.Equal(t, domain.SeverityHigh, got[0].Severity)
	require.NotNil(t, got[0].FinancialImpact)
	assert.InDelta(t, 12000, *got[0].FinancialImpact, 1e-9)
	assert.Equal(t, []string{"get it out before Friday"}, got[0].Quotes)
	assert.Equal(t, []string{"Marcus Webb", "Sarah Chen"}, got[0].Stakeholders)
	assert.Equal(t, "2025-03-14", got[0].DocumentDate)
	assert.False(t, got[0].Resolved)
}

func TestInsightStore_InsertRejectsInvalidRecord(t *testing.T) {
	store := setupTestStore(t)
	insights := store.InsightStore()
	ctx := context.Background()

	bad := testInsight("ins-1", "meetings/sync.txt")
	bad.Category = "made_up_category"

	err := insights.Insert(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsightStore_ListByFilter(t *testing.T) {
	store := setupTestStore(t)
	insights := store.InsightStore()
	ctx := context.Background()

	risk := testInsight("ins-risk", "a/doc.txt")
	risk.Category = domain.CategoryRisk
	risk.DocumentDate = "2025-03-01"
	require.NoError(t, insights.Insert(ctx, risk))

	action := testInsight("ins-action", "a/doc.txt")
	action.DocumentDate = "2025-03-20"
	require.NoError(t, insights.Insert(ctx, action))

	low := testInsight("ins-low", "b/doc.txt")
	low.Severity = domain.SeverityLow
	low.DocumentDate = "2025-03-10"
	require.NoError(t, insights.Insert(ctx, low))

	byCategory, err := insights.ListByFilter(ctx, driven.InsightFilter{Category: domain.CategoryRisk})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "ins-risk", byCategory[0].ID)

	bySeverity, err := insights.ListByFilter(ctx, driven.InsightFilter{Severity: domain.SeverityHigh})
	require.NoError(t, err)
	assert.Len(t, bySeverity, 2)

	from, _ := time.Parse("2006-01-02", "2025-03-05")
	to, _ := time.Parse("2006-01-02", "2025-03-25")
	byDate, err := insights.ListByFilter(ctx, driven.InsightFilter{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	// Newest document first.
	assert.Equal(t, "ins-action", byDate[0].ID)
	assert.Equal(t, "ins-low", byDate[1].ID)
}

func TestInsightStore_FilterByResolution(t *testing.T) {
	store := setupTestStore(t)
	insights := store.InsightStore()
	ctx := context.Background()

	require.NoError(t, insights.Insert(ctx, testInsight("ins-1", "a/doc.txt")))
	require.NoError(t, insights.Insert(ctx, testInsight("ins-2", "a/doc.txt")))
	require.NoError(t, insights.Resolve(ctx, "ins-1"))

	resolved := true
	got, err := insights.ListByFilter(ctx, driven.InsightFilter{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ins-1", got[0].ID)
	assert.True(t, got[0].Resolved)

	unresolved := false
	got, err = insights.ListByFilter(ctx, driven.InsightFilter{Resolved: &unresolved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ins-2", got[0].ID)
}

func TestInsightStore_ResolveUnknownID(t *testing.T) {
	store := setupTestStore(t)

	err := store.InsightStore().Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsightStore_Assign(t *testing.T) {
	store := setupTestStore(t)
	insights := store.InsightStore()
	ctx := context.Background()

	require.NoError(t, insights.Insert(ctx, testInsight("ins-1", "a/doc.txt")))
	require.NoError(t, insights.Assign(ctx, "ins-1", "Dana Cole"))

	got, err := insights.ListByObject(ctx, "a/doc.txt")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dana Cole", got[0].Assignee)

	assert.ErrorIs(t, insights.Assign(ctx, "missing", "x"), domain.ErrNotFound)
}

func TestInsightStore_DeleteByObject(t *testing.T) {
	store := setupTestStore(t)
	insights := store.InsightStore()
	ctx := context.Background()

	require.NoError(t, insights.Insert(ctx, testInsight("ins-1", "a/doc.txt")))
	require.NoError(t, insights.Insert(ctx, testInsight("ins-2", "b/doc.txt")))

	require.NoError(t, insights.DeleteByObject(ctx, "a/doc.txt"))

	gone, err := insights.ListByObject(ctx, "a/doc.txt")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := insights.ListByObject(ctx, "b/doc.txt")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

// ==================== Sync State Store ====================

func TestSyncStateStore_LoadMissingReturnsFreshState(t *testing.T) {
	store := setupTestStore(t)

	state, err := store.SyncStateStore().Load(context.Background(), "default")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "default", state.PipelineID)
	assert.True(t, state.LastCheckTime.IsZero())
	assert.Empty(t, state.KnownObjects)
}

func TestSyncStateStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	syncs := store.SyncStateStore()
	ctx := context.Background()

	state := domain.NewSyncState("default")
	state.LastCheckTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	state.RecordFingerprint("meetings/sync.txt", "abc123")
	state.RecordFingerprint("docs/plan.md", "def456")

	require.NoError(t, syncs.Save(ctx, state))

	got, err := syncs.Load(ctx, "default")
	require.NoError(t, err)
	assert.True(t, state.LastCheckTime.Equal(got.LastCheckTime))
	assert.Equal(t, state.KnownObjects, got.KnownObjects)
}

func TestSyncStateStore_SaveReplacesPreviousState(t *testing.T) {
	store := setupTestStore(t)
	syncs := store.SyncStateStore()
	ctx := context.Background()

	first := domain.NewSyncState("default")
	first.RecordFingerprint("a/one.txt", "v1")
	require.NoError(t, syncs.Save(ctx, first))

	second := domain.NewSyncState("default")
	second.RecordFingerprint("a/one.txt", "v2")
	require.NoError(t, syncs.Save(ctx, second))

	got, err := syncs.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a/one.txt": "v2"}, got.KnownObjects)
}

func TestSyncStateStore_StatesAreIsolatedPerPipeline(t *testing.T) {
	store := setupTestStore(t)
	syncs := store.SyncStateStore()
	ctx := context.Background()

	a := domain.NewSyncState("alpha")
	a.RecordFingerprint("x", "1")
	require.NoError(t, syncs.Save(ctx, a))

	b, err := syncs.Load(ctx, "beta")
	require.NoError(t, err)
	assert.Empty(t, b.KnownObjects)
}

func TestSyncStateStore_SupportsKnownObjects(t *testing.T) {
	store := setupTestStore(t)
	assert.True(t, store.SyncStateStore().SupportsKnownObjects())
}

func TestSyncStateStore_SaveInvalidState(t *testing.T) {
	store := setupTestStore(t)

	assert.ErrorIs(t, store.SyncStateStore().Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SyncStateStore().Save(context.Background(), &domain.SyncState{}), domain.ErrInvalidInput)
}
