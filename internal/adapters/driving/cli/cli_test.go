package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docsight/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	report       *driving.SyncReport
	status       *driving.SyncStatus
	err          error
	lastOpts     driving.SyncOptions
	lastInterval time.Duration
	identities   []string
}

func (m *mockSyncOrchestrator) Watch(ctx context.Context, interval time.Duration, opts driving.SyncOptions) error {
	m.lastInterval = interval
	m.lastOpts = opts
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockSyncOrchestrator) Backfill(_ context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	m.lastOpts = opts
	return m.report, m.err
}

func (m *mockSyncOrchestrator) RunOnce(_ context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	m.lastOpts = opts
	return m.report, m.err
}

func (m *mockSyncOrchestrator) ProcessObject(_ context.Context, identity string, opts driving.SyncOptions) (*driving.SyncReport, error) {
	m.lastOpts = opts
	m.identities = append(m.identities, identity)
	return m.report, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return m.status, m.err
}

func setupSyncTest(mock *mockSyncOrchestrator) func() {
	oldSync := syncOrchestrator
	syncOrchestrator = mock
	return func() {
		syncOrchestrator = oldSync
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func sampleReport() *driving.SyncReport {
	return &driving.SyncReport{
		Discovered: 10,
		Changed:    4,
		Processed:  3,
		Deferred:   1,
		Insights:   7,
		Failed:     map[string]string{"meetings/bad.txt": "extract: empty content"},
		Duration:   1500 * time.Millisecond,
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "docsight version")
}

func TestRunCmd_ExecutesCycle(t *testing.T) {
	mock := &mockSyncOrchestrator{report: sampleReport()}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand(t, "run", "--max-objects", "5", "--force")

	require.NoError(t, err)
	assert.Contains(t, out, "Running synchronisation cycle")
	assert.Contains(t, out, "Discovered 10 objects, 4 changed.")
	assert.Contains(t, out, "Processed 3 documents, stored 7 insights")
	assert.Contains(t, out, "Deferred 1 objects")
	assert.Contains(t, out, "Failed meetings/bad.txt: extract: empty content")
	assert.Equal(t, 5, mock.lastOpts.MaxObjects)
	assert.True(t, mock.lastOpts.Force)
}

func TestRunCmd_ProcessesSingleObject(t *testing.T) {
	mock := &mockSyncOrchestrator{report: sampleReport()}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand(t, "run", "meetings/q1-review.txt")

	require.NoError(t, err)
	assert.Contains(t, out, "Processing meetings/q1-review.txt")
	assert.Equal(t, []string{"meetings/q1-review.txt"}, mock.identities)
}

func TestRunCmd_WithoutService(t *testing.T) {
	oldSync := syncOrchestrator
	syncOrchestrator = nil
	defer func() { syncOrchestrator = oldSync }()

	_, err := executeCommand(t, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestBackfillCmd_PrintsReport(t *testing.T) {
	mock := &mockSyncOrchestrator{report: sampleReport()}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand(t, "backfill", "--areas", "meetings,reports", "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Backfilling all documents")
	assert.Equal(t, []string{"meetings", "reports"}, mock.lastOpts.Areas)
	assert.True(t, mock.lastOpts.DryRun)
}

func TestBackfillCmd_PropagatesError(t *testing.T) {
	mock := &mockSyncOrchestrator{err: errors.New("storage unreachable")}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	_, err := executeCommand(t, "backfill")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage unreachable")
}

func TestStatusCmd(t *testing.T) {
	mock := &mockSyncOrchestrator{status: &driving.SyncStatus{
		Running:       false,
		LastCheckTime: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		KnownObjects:  42,
	}}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Synchronisation: idle")
	assert.Contains(t, out, "2025-03-14")
	assert.Contains(t, out, "Known objects: 42")
}

func TestStatusCmd_NeverChecked(t *testing.T) {
	mock := &mockSyncOrchestrator{status: &driving.SyncStatus{}}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Last check: never")
}

func TestWatchCmd_RejectsNonPositiveInterval(t *testing.T) {
	mock := &mockSyncOrchestrator{}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	_, err := executeCommand(t, "watch", "--interval", "0s")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}

// resetWatchFlags undoes flag state left over from earlier command runs.
func resetWatchFlags(t *testing.T) {
	t.Helper()
	for _, name := range []string{"interval", "max-objects"} {
		f := watchCmd.Flags().Lookup(name)
		require.NotNil(t, f)
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
}

func TestWatchCmd_ConfigDefaults(t *testing.T) {
	mock := &mockSyncOrchestrator{err: errors.New("backend down")}
	cleanup := setupSyncTest(mock)
	defer cleanup()
	cleanupCfg := setupConfigTest(t)
	defer cleanupCfg()
	resetWatchFlags(t)

	require.NoError(t, configStore.Set(keySyncInterval, int64(120)))
	require.NoError(t, configStore.Set(keySyncMaxObjects, int64(25)))

	_, err := executeCommand(t, "watch")

	require.Error(t, err)
	assert.Equal(t, 2*time.Minute, mock.lastInterval)
	assert.Equal(t, 25, mock.lastOpts.MaxObjects)
}

func TestWatchCmd_FlagsOverrideConfig(t *testing.T) {
	mock := &mockSyncOrchestrator{err: errors.New("backend down")}
	cleanup := setupSyncTest(mock)
	defer cleanup()
	cleanupCfg := setupConfigTest(t)
	defer cleanupCfg()
	resetWatchFlags(t)

	require.NoError(t, configStore.Set(keySyncInterval, int64(120)))

	_, err := executeCommand(t, "watch", "--interval", "30s")

	require.Error(t, err)
	assert.Equal(t, 30*time.Second, mock.lastInterval)
}

func setupInsightsTest(t *testing.T) (*memory.InsightStore, func()) {
	t.Helper()

	store := memory.NewInsightStore()
	oldStore := insightStore
	insightStore = store
	return store, func() {
		insightStore = oldStore
	}
}

func seedInsight(t *testing.T, store *memory.InsightStore, id string, severity domain.Severity) {
	t.Helper()

	impact := 12000.0
	rec := &domain.InsightRecord{
		ID:              id,
		ObjectID:        "meetings/q1-review.txt",
		Category:        domain.CategoryBudgetImpact,
		Title:           "Infrastructure budget overrun of $12,000",
		Description:     "Cloud spend exceeded the quarterly allocation.",
		Severity:        severity,
		Confidence:      0.9,
		FinancialImpact: &impact,
		DocumentDate:    "2025-03-14",
	}
	require.NoError(t, store.Insert(context.Background(), rec))
}

func TestInsightsListCmd(t *testing.T) {
	store, cleanup := setupInsightsTest(t)
	defer cleanup()
	seedInsight(t, store, "ins-1", domain.SeverityHigh)

	out, err := executeCommand(t, "insights", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Infrastructure budget overrun")
	assert.Contains(t, out, "budget_impact")
	assert.Contains(t, out, "financial impact: $12000.00")
	assert.Contains(t, out, "1 insights.")
}

func TestInsightsListCmd_FiltersBySeverity(t *testing.T) {
	store, cleanup := setupInsightsTest(t)
	defer cleanup()
	seedInsight(t, store, "critical-one", domain.SeverityCritical)
	seedInsight(t, store, "low-one", domain.SeverityLow)

	out, err := executeCommand(t, "insights", "list", "--severity", "critical")

	require.NoError(t, err)
	assert.Contains(t, out, "critical-one")
	assert.NotContains(t, out, "low-one")
}

func TestInsightsListCmd_RejectsUnknownVocabulary(t *testing.T) {
	_, cleanup := setupInsightsTest(t)
	defer cleanup()

	_, err := executeCommand(t, "insights", "list", "--severity", "apocalyptic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")

	_, err = executeCommand(t, "insights", "list", "--severity", "", "--category", "gossip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestInsightsListCmd_RejectsBadDate(t *testing.T) {
	_, cleanup := setupInsightsTest(t)
	defer cleanup()

	_, err := executeCommand(t, "insights", "list", "--category", "", "--since", "14/03/2025")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --since date")
}

func TestInsightsListCmd_Empty(t *testing.T) {
	_, cleanup := setupInsightsTest(t)
	defer cleanup()

	out, err := executeCommand(t, "insights", "list", "--since", "")

	require.NoError(t, err)
	assert.Contains(t, out, "No insights found.")
}

func TestInsightsResolveCmd(t *testing.T) {
	store, cleanup := setupInsightsTest(t)
	defer cleanup()
	seedInsight(t, store, "ins-1", domain.SeverityHigh)

	out, err := executeCommand(t, "insights", "resolve", "ins-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Insight ins-1 resolved.")

	records, err := store.ListByObject(context.Background(), "meetings/q1-review.txt")
	require.NoError(t, err)
	assert.True(t, records[0].Resolved)
}

func TestInsightsResolveCmd_NotFound(t *testing.T) {
	_, cleanup := setupInsightsTest(t)
	defer cleanup()

	_, err := executeCommand(t, "insights", "resolve", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsightsAssignCmd(t *testing.T) {
	store, cleanup := setupInsightsTest(t)
	defer cleanup()
	seedInsight(t, store, "ins-1", domain.SeverityHigh)

	out, err := executeCommand(t, "insights", "assign", "ins-1", "Sarah Chen")

	require.NoError(t, err)
	assert.Contains(t, out, "assigned to Sarah Chen")

	records, err := store.ListByObject(context.Background(), "meetings/q1-review.txt")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Chen", records[0].Assignee)
}
