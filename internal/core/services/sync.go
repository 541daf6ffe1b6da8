package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/core/ports/driving"
	"github.com/meridian-labs/docsight/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// DefaultPipelineID names the sync state record when none is configured.
const DefaultPipelineID = "default"

// SyncOrchestrator coordinates document ingestion from object storage.
type SyncOrchestrator struct {
	storage    driven.ObjectStorage
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	docStore   driven.DocumentStore
	syncStore  driven.SyncStateStore
	pipeline   driving.InsightPipeline
	detector   *ChangeDetector

	pipelineID string
	areas      []string
	limiter    *rate.Limiter

	// Run state
	mu      sync.Mutex
	running bool
	last    *domain.SyncState
}

// SyncOption configures the orchestrator.
type SyncOption func(*SyncOrchestrator)

// WithPipelineID sets the identifier the sync state is stored under.
func WithPipelineID(id string) SyncOption {
	return func(o *SyncOrchestrator) { o.pipelineID = id }
}

// WithAreas sets the default storage areas to synchronise.
func WithAreas(areas []string) SyncOption {
	return func(o *SyncOrchestrator) { o.areas = areas }
}

// WithObjectRate caps how many objects are processed per second.
// Processing a document fans out into embedding and LLM calls, so this
// is the throttle on upstream API pressure.
func WithObjectRate(perSecond float64) SyncOption {
	return func(o *SyncOrchestrator) {
		if perSecond > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewSyncOrchestrator creates an orchestrator.
// The embedder and insight pipeline are optional - if nil, chunks are
// stored without embeddings and no insights are extracted.
func NewSyncOrchestrator(
	storage driven.ObjectStorage,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	syncStore driven.SyncStateStore,
	pipeline driving.InsightPipeline,
	opts ...SyncOption,
) *SyncOrchestrator {
	o := &SyncOrchestrator{
		storage:    storage,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		docStore:   docStore,
		syncStore:  syncStore,
		pipeline:   pipeline,
		detector:   NewChangeDetector(storage),
		pipelineID: DefaultPipelineID,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Watch polls storage for changes on an interval until the context is
// cancelled. When the storage backend pushes change notifications, a
// notification also triggers a cycle so local changes surface before the
// next tick.
func (o *SyncOrchestrator) Watch(ctx context.Context, interval time.Duration, opts driving.SyncOptions) error {
	var notifications <-chan string
	if notifier, ok := o.storage.(driven.ChangeNotifier); ok {
		ch, err := notifier.Notifications(ctx)
		if err != nil {
			logger.Warn("Change notifications unavailable, polling only: %v", err)
		} else {
			notifications = ch
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Watching for changes every %s", interval)

	for {
		report, err := o.RunOnce(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("Sync cycle failed: %v", err)
		} else if report.Processed > 0 || len(report.Failed) > 0 {
			logger.Info("Cycle: %d processed, %d deferred, %d failed",
				report.Processed, report.Deferred, len(report.Failed))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case path := <-notifications:
			logger.Debug("Change notification: %s", path)
		}
	}
}

// RunOnce performs a single incremental cycle.
func (o *SyncOrchestrator) RunOnce(ctx context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	return o.cycle(ctx, opts, false)
}

// Backfill processes every object regardless of watermark. Unchanged
// content is still skipped by fingerprint unless Force is set.
func (o *SyncOrchestrator) Backfill(ctx context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	return o.cycle(ctx, opts, true)
}

// ProcessObject ingests a single object by identity ("area/path").
func (o *SyncOrchestrator) ProcessObject(ctx context.Context, identity string, opts driving.SyncOptions) (*driving.SyncReport, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	state, err := o.syncStore.Load(ctx, o.pipelineID)
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	o.setLast(state)

	refs, err := o.detector.Discover(ctx, o.resolveAreas(opts))
	if err != nil {
		return nil, err
	}

	var target *domain.ObjectRef
	for i := range refs {
		if refs[i].Identity() == identity {
			target = &refs[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("object %s: %w", identity, domain.ErrNotFound)
	}

	start := time.Now()
	report := &driving.SyncReport{
		Discovered: len(refs),
		Changed:    1,
		Failed:     make(map[string]string),
	}
	if opts.DryRun {
		logger.Info("Dry run: would process %s", identity)
		report.Duration = time.Since(start)
		return report, nil
	}

	outcome, err := o.processObject(ctx, state, *target, opts, false)
	if err != nil {
		return nil, err
	}
	if outcome.processed {
		report.Processed = 1
		report.Insights = outcome.insights
		if err := o.syncStore.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("save sync state: %w", err)
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}

// Status returns the current sync status.
func (o *SyncOrchestrator) Status(ctx context.Context) (*driving.SyncStatus, error) {
	o.mu.Lock()
	running := o.running
	state := o.last
	o.mu.Unlock()

	if state == nil {
		loaded, err := o.syncStore.Load(ctx, o.pipelineID)
		if err != nil {
			return nil, fmt.Errorf("load sync state: %w", err)
		}
		state = loaded
	}

	return &driving.SyncStatus{
		Running:       running,
		LastCheckTime: state.LastCheckTime,
		KnownObjects:  len(state.KnownObjects),
	}, nil
}

// cycle runs one discovery-and-process pass. Backfill ignores the
// watermark during candidate selection.
//
//nolint:gocognit,gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) cycle(ctx context.Context, opts driving.SyncOptions, backfill bool) (*driving.SyncReport, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	start := time.Now()

	state, err := o.syncStore.Load(ctx, o.pipelineID)
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	o.setLast(state)

	refs, err := o.detector.Discover(ctx, o.resolveAreas(opts))
	if err != nil {
		return nil, err
	}

	var candidates []domain.ObjectRef
	if backfill {
		candidates = refs
	} else {
		candidates = o.detector.Candidates(refs, state, o.syncStore.SupportsKnownObjects(), opts.Force)
	}

	// Backfill passes touch many documents, so the insight stage runs as
	// one bounded-concurrency batch after ingestion instead of per object.
	batchInsights := backfill && o.pipeline != nil
	var pending []pendingDoc

	report := &driving.SyncReport{
		Discovered: len(refs),
		Changed:    len(candidates),
		Failed:     make(map[string]string),
	}

	if opts.MaxObjects > 0 && len(candidates) > opts.MaxObjects {
		report.Deferred = len(candidates) - opts.MaxObjects
		candidates = candidates[:opts.MaxObjects]
	}

	if opts.DryRun {
		for _, ref := range candidates {
			logger.Info("Dry run: would process %s", ref.Identity())
		}
		report.Duration = time.Since(start)
		return report, nil
	}

	// Fingerprints already recorded survive an interrupt. The watermark
	// only advances once the whole cycle completes, so a killed run
	// rediscovers what it had not reached.
	dirty := false
	defer func() {
		if dirty {
			if saveErr := o.syncStore.Save(context.WithoutCancel(ctx), state); saveErr != nil {
				logger.Error("Failed to save sync state: %v", saveErr)
			}
		}
	}()

	for _, ref := range candidates {
		if ctx.Err() != nil {
			report.Duration = time.Since(start)
			return report, ctx.Err()
		}
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}
		}

		identity := ref.Identity()
		logger.Debug("Processing: %s", identity)

		outcome, err := o.processObject(ctx, state, ref, opts, batchInsights)
		if err != nil {
			report.Failed[identity] = err.Error()
			logger.Warn("Failed to process %s: %v", identity, err)
			continue
		}
		dirty = true
		if !outcome.processed {
			continue
		}
		if batchInsights {
			pending = append(pending, pendingDoc{ref: ref, fingerprint: outcome.fingerprint, text: outcome.text})
		} else {
			report.Processed++
			report.Insights += outcome.insights
		}
	}

	if len(pending) > 0 {
		ins := make([]driving.PipelineInput, len(pending))
		for i, p := range pending {
			ins[i] = driving.PipelineInput{Ref: p.ref, Text: p.text}
		}
		batchRep, err := o.pipeline.ProcessBatch(ctx, ins, opts.Force)
		if err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("extract insights: %w", err)
		}
		// A document whose insight stage failed keeps no fingerprint and
		// is retried next cycle, matching the sequential path.
		for _, p := range pending {
			identity := p.ref.Identity()
			if msg, failed := batchRep.Failed[identity]; failed {
				report.Failed[identity] = msg
				logger.Warn("Failed to extract insights from %s: %s", identity, msg)
				continue
			}
			state.RecordFingerprint(identity, p.fingerprint)
			report.Processed++
		}
		report.Insights += batchRep.Stored
		dirty = true
	}

	state.LastCheckTime = start
	dirty = true

	report.Duration = time.Since(start)
	return report, nil
}

// objectOutcome reports what processObject did with one candidate.
type objectOutcome struct {
	// processed is false when the fingerprint matched stored state and
	// the object was skipped.
	processed bool
	insights  int

	// fingerprint and text are carried back when the insight stage was
	// deferred, so the caller can batch it and record the fingerprint
	// afterwards.
	fingerprint string
	text        string
}

// pendingDoc is an ingested document whose insight extraction was
// deferred to the end-of-cycle batch.
type pendingDoc struct {
	ref         domain.ObjectRef
	fingerprint string
	text        string
}

// processObject downloads, confirms, extracts, chunks, embeds, stores and
// analyses a single object. The fingerprint is recorded on the state only
// after every stage succeeded, so a failed object is retried next cycle.
// With deferInsights the pipeline stage and the fingerprint are left to
// the caller.
func (o *SyncOrchestrator) processObject(
	ctx context.Context,
	state *domain.SyncState,
	ref domain.ObjectRef,
	opts driving.SyncOptions,
	deferInsights bool,
) (objectOutcome, error) {
	identity := ref.Identity()

	content, err := o.storage.Download(ctx, ref.Area, ref.Path)
	if err != nil {
		return objectOutcome{}, fmt.Errorf("download: %w", err)
	}

	fp, changed := o.detector.Confirm(content, identity, state)
	if !changed && !opts.Force {
		logger.Debug("Unchanged content, skipping: %s", identity)
		return objectOutcome{}, nil
	}

	obj := &domain.SourceObject{Ref: ref, Content: content}
	text, err := o.extractors.Extract(ctx, obj)
	if err != nil {
		return objectOutcome{}, fmt.Errorf("extract: %w", err)
	}

	mediaType := ref.ResolveMediaType()

	chunks, err := o.chunker.Chunk(ctx, identity, mediaType, text)
	if err != nil {
		return objectOutcome{}, fmt.Errorf("chunk: %w", err)
	}

	if o.embedder != nil && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		vectors, err := o.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return objectOutcome{}, fmt.Errorf("embed chunks: %w", err)
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	if err := o.docStore.ReplaceChunks(ctx, identity, chunks); err != nil {
		return objectOutcome{}, fmt.Errorf("store chunks: %w", err)
	}

	outcome := objectOutcome{processed: true, fingerprint: fp, text: text}
	if deferInsights {
		return outcome, nil
	}

	if o.pipeline != nil {
		in := driving.PipelineInput{Ref: ref, Text: text}
		rep, err := o.pipeline.ProcessDocument(ctx, in, opts.Force)
		if err != nil {
			return objectOutcome{}, fmt.Errorf("extract insights: %w", err)
		}
		outcome.insights = rep.Stored
	}

	state.RecordFingerprint(identity, fp)
	return outcome, nil
}

func (o *SyncOrchestrator) resolveAreas(opts driving.SyncOptions) []string {
	if len(opts.Areas) > 0 {
		return opts.Areas
	}
	return o.areas
}

func (o *SyncOrchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return domain.ErrSyncInProgress
	}
	o.running = true
	return nil
}

func (o *SyncOrchestrator) release() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

func (o *SyncOrchestrator) setLast(state *domain.SyncState) {
	o.mu.Lock()
	o.last = state
	o.mu.Unlock()
}
