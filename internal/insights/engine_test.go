package insights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/core/ports/driving"
)

type mockLLM struct {
	mu sync.Mutex

	generateResponse string
	generateErr      error
	chatResponse     string
	chatErr          error

	generateCalls int
	chatCalls     int
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	return m.generateResponse, m.generateErr
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatCalls++
	return m.chatResponse, m.chatErr
}

func (m *mockLLM) ModelName() string          { return "gpt-4o-mini" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

type mockInsightStore struct {
	mu      sync.Mutex
	records []domain.InsightRecord

	insertErr  error
	listErrFor string
}

func (s *mockInsightStore) Insert(_ context.Context, rec *domain.InsightRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.records = append(s.records, *rec)
	return nil
}

func (s *mockInsightStore) ListByObject(_ context.Context, objectID string) ([]domain.InsightRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErrFor != "" && s.listErrFor == objectID {
		return nil, errors.New("store unavailable")
	}
	var out []domain.InsightRecord
	for _, r := range s.records {
		if r.ObjectID == objectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *mockInsightStore) ListByFilter(context.Context, driven.InsightFilter) ([]domain.InsightRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InsightRecord(nil), s.records...), nil
}

func (s *mockInsightStore) Resolve(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Resolved = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *mockInsightStore) Assign(_ context.Context, id, assignee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Assignee = assignee
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *mockInsightStore) DeleteByObject(_ context.Context, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []domain.InsightRecord
	for _, r := range s.records {
		if r.ObjectID != objectID {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *mockInsightStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

const classificationJSON = `{
	"document_type": "meeting_transcript",
	"business_domain": "consulting",
	"urgency_level": "high",
	"key_stakeholders": ["Sarah Chen"],
	"contains_decisions": true,
	"contains_action_items": true,
	"contains_financial_data": true,
	"contains_timeline_info": false
}`

const extractionJSON = `[
	{
		"insight_type": "budget_impact",
		"title": "Client approved additional integration budget",
		"description": "Sarah confirmed the client will fund the extra integration work raised last sprint.",
		"severity": "high",
		"confidence_score": 0.9,
		"financial_impact": "$12,000",
		"exact_quotes": ["we can fund the integration work"]
	},
	{
		"insight_type": "action_item",
		"title": "Note",
		"description": "tbd",
		"severity": "low",
		"confidence_score": 0.3
	}
]`

var documentText = `Sarah Chen: Thanks everyone for joining. The main item today is the
integration budget. The client has confirmed they will fund the extra
integration work we scoped last sprint, roughly twelve thousand dollars.

Marcus Webb: Good. I will update the statement of work and send it over
for signature before Friday so we can start next week.`

func testConfig() Config {
	return Config{
		MaxWindowTokens:        6000,
		MaxCandidatesPerWindow: 5,
		BatchConcurrency:       2,
		LLMTimeout:             time.Second,
		RetryAttempts:          2,
		RetryBaseDelay:         time.Millisecond,
	}
}

func pipelineInput(path string) driving.PipelineInput {
	return driving.PipelineInput{
		Ref:  domain.ObjectRef{Area: "meetings", Path: path},
		Text: documentText,
	}
}

func TestProcessDocument_StoresFilteredInsights(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), pipelineInput("2025-03-14 budget sync.txt"), false)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 2, report.Candidates)
	// The low-confidence "Note" candidate is filtered out.
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.ByCategory[domain.CategoryBudgetImpact])
	require.Equal(t, 1, store.count())

	rec := store.records[0]
	assert.Equal(t, "meetings/2025-03-14 budget sync.txt", rec.ObjectID)
	assert.Equal(t, domain.CategoryBudgetImpact, rec.Category)
	require.NotNil(t, rec.FinancialImpact)
	assert.InDelta(t, 12000, *rec.FinancialImpact, 1e-9)
	// Document date recovered from the filename.
	assert.Equal(t, "2025-03-14", rec.DocumentDate)
	assert.Equal(t, "gpt-4o-mini", rec.GeneratedBy)
}

func TestProcessDocument_CarriesProjectIdentifier(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{}
	engine := NewEngine(llm, store, testConfig())

	in := pipelineInput("2025-03-14 budget sync.txt")
	in.Ref.Metadata = map[string]any{"project_id": "proj-42"}

	_, err := engine.ProcessDocument(context.Background(), in, false)

	require.NoError(t, err)
	require.Equal(t, 1, store.count())
	assert.Equal(t, "proj-42", store.records[0].ProjectID)
}

func TestProcessDocument_SkipsWhenInsightsExist(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{records: []domain.InsightRecord{{
		ID: "existing", ObjectID: "meetings/sync.txt",
		Category: domain.CategoryRisk, Title: "Existing", Severity: domain.SeverityLow, Confidence: 0.8,
	}}}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), pipelineInput("sync.txt"), false)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Stored)
	assert.Zero(t, llm.chatCalls)
	assert.Equal(t, 1, store.count())
}

func TestProcessDocument_ForceReplacesExisting(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{records: []domain.InsightRecord{{
		ID: "stale", ObjectID: "meetings/sync.txt",
		Category: domain.CategoryRisk, Title: "Stale", Severity: domain.SeverityLow, Confidence: 0.8,
	}}}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), pipelineInput("sync.txt"), true)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Stored)
	require.Equal(t, 1, store.count())
	assert.NotEqual(t, "stale", store.records[0].ID)
}

func TestProcessDocument_ShortContentIsIgnored(t *testing.T) {
	llm := &mockLLM{}
	store := &mockInsightStore{}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), driving.PipelineInput{
		Ref:  domain.ObjectRef{Area: "meetings", Path: "empty.txt"},
		Text: "too short",
	}, false)

	require.NoError(t, err)
	assert.Zero(t, report.Documents)
	assert.Zero(t, llm.generateCalls)
	assert.Zero(t, llm.chatCalls)
}

func TestProcessDocument_UnparseableExtractionStoresNothing(t *testing.T) {
	llm := &mockLLM{
		generateResponse: classificationJSON,
		chatResponse:     "I could not find anything noteworthy.",
	}
	store := &mockInsightStore{}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), pipelineInput("sync.txt"), false)

	require.NoError(t, err)
	assert.Zero(t, report.Stored)
	assert.Zero(t, store.count())
}

func TestProcessDocument_LLMFailureDegradesToNoInsights(t *testing.T) {
	llm := &mockLLM{
		generateErr: errors.New("rate limited"),
		chatErr:     errors.New("rate limited"),
	}
	store := &mockInsightStore{}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), pipelineInput("sync.txt"), false)

	// Extraction failures degrade quality, not availability.
	require.NoError(t, err)
	assert.Zero(t, report.Stored)
	// Chat is retried once per attempt budget.
	assert.Equal(t, 2, llm.chatCalls)
}

func TestProcessDocument_InsertFailureIsIsolated(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{insertErr: errors.New("disk full")}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessDocument(context.Background(), pipelineInput("sync.txt"), false)

	require.NoError(t, err)
	assert.Zero(t, report.Stored)
	assert.Equal(t, 2, report.Candidates)
}

func TestProcessBatch_MergesReports(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessBatch(context.Background(), []driving.PipelineInput{
		pipelineInput("a.txt"),
		pipelineInput("b.txt"),
		pipelineInput("c.txt"),
	}, false)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Documents)
	assert.Equal(t, 3, report.Stored)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 3, store.count())
}

func TestProcessBatch_PerDocumentFailureIsIsolated(t *testing.T) {
	llm := &mockLLM{generateResponse: classificationJSON, chatResponse: extractionJSON}
	store := &mockInsightStore{listErrFor: "meetings/bad.txt"}
	engine := NewEngine(llm, store, testConfig())

	report, err := engine.ProcessBatch(context.Background(), []driving.PipelineInput{
		pipelineInput("good.txt"),
		pipelineInput("bad.txt"),
	}, false)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed, "meetings/bad.txt")
}

func TestProcessBatch_EmptyInput(t *testing.T) {
	engine := NewEngine(&mockLLM{}, &mockInsightStore{}, testConfig())

	report, err := engine.ProcessBatch(context.Background(), nil, false)

	require.NoError(t, err)
	assert.Zero(t, report.Documents)
}
