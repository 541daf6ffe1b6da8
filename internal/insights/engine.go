package insights

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/core/ports/driving"
	"github.com/meridian-labs/docsight/internal/logger"
	"github.com/meridian-labs/docsight/internal/retry"
)

// Ensure Engine implements the pipeline port.
var _ driving.InsightPipeline = (*Engine)(nil)

// minContentLength is the shortest document worth analysing.
const minContentLength = 50

// Config tunes the extraction pipeline.
type Config struct {
	// MaxWindowTokens bounds one extraction window.
	MaxWindowTokens int

	// MaxCandidatesPerWindow is the cap the prompt asks the model for.
	MaxCandidatesPerWindow int

	// BatchConcurrency is how many documents ProcessBatch analyses at
	// once. Small on purpose: each document fans out into LLM calls.
	BatchConcurrency int

	// MinQuality raises the stage-4 floor on the computed quality score.
	// Zero keeps only the confidence and length floors.
	MinQuality float64

	// LLMTimeout bounds a single model call.
	LLMTimeout time.Duration

	// RetryAttempts and RetryBaseDelay shape per-call retry.
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// DefaultConfig returns the pipeline tuning used in production.
func DefaultConfig() Config {
	return Config{
		MaxWindowTokens:        6000,
		MaxCandidatesPerWindow: 5,
		BatchConcurrency:       3,
		LLMTimeout:             90 * time.Second,
		RetryAttempts:          3,
		RetryBaseDelay:         2 * time.Second,
	}
}

// Engine runs the four-stage insight extraction pipeline.
type Engine struct {
	llm     driven.LLMService
	store   driven.InsightStore
	cfg     Config
	counter tokenCounter
}

// NewEngine creates a pipeline engine.
func NewEngine(llm driven.LLMService, store driven.InsightStore, cfg Config) *Engine {
	if cfg.MaxWindowTokens <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		llm:     llm,
		store:   store,
		cfg:     cfg,
		counter: newTokenCounter(llm.ModelName()),
	}
}

// ProcessDocument runs classification, windowed extraction, enhancement
// and filtering over one document's text and persists the survivors.
func (e *Engine) ProcessDocument(ctx context.Context, in driving.PipelineInput, force bool) (*driving.InsightReport, error) {
	started := time.Now()
	report := &driving.InsightReport{Failed: make(map[string]string)}
	defer func() { report.Elapsed = time.Since(started) }()
	objectID := in.Ref.Identity()

	if len(strings.TrimSpace(in.Text)) < minContentLength {
		logger.Debug("Content too short for insights: %s", objectID)
		return report, nil
	}

	if force {
		if err := e.store.DeleteByObject(ctx, objectID); err != nil {
			return nil, fmt.Errorf("delete prior insights: %w", err)
		}
	} else {
		existing, err := e.store.ListByObject(ctx, objectID)
		if err != nil {
			return nil, fmt.Errorf("check existing insights: %w", err)
		}
		if len(existing) > 0 {
			logger.Debug("Insights already exist, skipping: %s", objectID)
			report.Skipped = 1
			return report, nil
		}
	}

	title := path.Base(in.Ref.Path)
	analysis := e.classify(ctx, title, in.Text)

	windows := splitWindows(in.Text, e.counter, e.cfg.MaxWindowTokens)
	raw := e.extractFromWindows(ctx, objectID, title, windows, analysis)
	report.Candidates = len(raw)

	var candidates []*scoredInsight
	for _, r := range raw {
		if scored := e.enhance(r, objectID, title, analysis); scored != nil {
			candidates = append(candidates, scored)
		}
	}

	records := filterAndRank(candidates, e.cfg.MinQuality)

	projectID := in.Ref.ProjectID()
	for _, rec := range records {
		rec.ProjectID = projectID
		if err := rec.Validate(); err != nil {
			logger.Warn("Dropping invalid insight for %s: %v", objectID, err)
			continue
		}
		if err := e.store.Insert(ctx, rec); err != nil {
			// Per-record persistence failures never abort the batch.
			logger.Error("Failed to save insight %q: %v", rec.Title, err)
			continue
		}
		report.Stored++
		if report.ByCategory == nil {
			report.ByCategory = make(map[domain.InsightCategory]int)
			report.BySeverity = make(map[domain.Severity]int)
		}
		report.ByCategory[rec.Category]++
		report.BySeverity[rec.Severity]++
	}

	report.Documents = 1
	logger.Info("Extracted %d insights from %s in %s (%d candidates)", report.Stored, objectID, time.Since(started).Round(time.Millisecond), report.Candidates)
	return report, nil
}

// extractFromWindows runs the stage-2 LLM extraction over each window.
// A failed window yields zero candidates and is logged; it never aborts
// the other windows.
func (e *Engine) extractFromWindows(ctx context.Context, objectID, title string, windows []string, analysis documentAnalysis) []RawInsight {
	system := extractionSystemPrompt(analysis, e.cfg.MaxCandidatesPerWindow)

	var all []RawInsight
	for i, window := range windows {
		messages := []driven.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: extractionUserPrompt(title, window, i, len(windows))},
		}

		var response string
		err := retry.WithBackoff(ctx, func() error {
			callCtx, cancel := context.WithTimeout(ctx, e.cfg.LLMTimeout)
			defer cancel()

			var callErr error
			response, callErr = e.llm.Chat(callCtx, messages, driven.ChatOptions{
				MaxTokens:   6000,
				Temperature: 0.1,
			})
			return callErr
		}, e.cfg.RetryAttempts, e.cfg.RetryBaseDelay)
		if err != nil {
			logger.Warn("Extraction failed for %s window %d/%d: %v", objectID, i+1, len(windows), err)
			continue
		}

		result := ParseInsights(response)
		for _, warning := range result.Warnings {
			logger.Debug("Window %d/%d of %s: %s", i+1, len(windows), objectID, warning)
		}
		if result.Status == ParseFailed {
			logger.Warn("Unparseable extraction response for %s window %d/%d: %s", objectID, i+1, len(windows), result.Reason)
			continue
		}
		all = append(all, result.Insights...)
	}
	return all
}

// ProcessBatch runs ProcessDocument over several documents with bounded
// concurrency. Per-document failures land in the report, not the error.
func (e *Engine) ProcessBatch(ctx context.Context, ins []driving.PipelineInput, force bool) (*driving.InsightReport, error) {
	started := time.Now()
	total := &driving.InsightReport{Failed: make(map[string]string)}
	defer func() { total.Elapsed = time.Since(started) }()
	if len(ins) == 0 {
		return total, nil
	}

	pool, err := ants.NewPool(e.cfg.BatchConcurrency)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, in := range ins {
		in := in
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			rep, err := e.ProcessDocument(ctx, in, force)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				total.Failed[in.Ref.Identity()] = err.Error()
				return
			}
			total.Documents += rep.Documents
			total.Skipped += rep.Skipped
			total.Candidates += rep.Candidates
			total.Stored += rep.Stored
			for cat, n := range rep.ByCategory {
				if total.ByCategory == nil {
					total.ByCategory = make(map[domain.InsightCategory]int)
				}
				total.ByCategory[cat] += n
			}
			for sev, n := range rep.BySeverity {
				if total.BySeverity == nil {
					total.BySeverity = make(map[domain.Severity]int)
				}
				total.BySeverity[sev] += n
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			total.Failed[in.Ref.Identity()] = submitErr.Error()
			mu.Unlock()
		}
	}
	wg.Wait()

	return total, nil
}
