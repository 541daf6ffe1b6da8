package driving

import (
	"context"
	"time"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// PipelineInput is a document ready for insight extraction.
type PipelineInput struct {
	// Ref identifies the source object.
	Ref domain.ObjectRef

	// Text is the extracted document text.
	Text string
}

// InsightPipeline extracts business insights from ingested documents.
type InsightPipeline interface {
	// ProcessDocument runs the extraction pipeline over a document's
	// text and stores the surviving insights. When force is true any
	// previously stored insights for the object are removed first;
	// otherwise a document that already has insights is skipped.
	ProcessDocument(ctx context.Context, in PipelineInput, force bool) (*InsightReport, error)

	// ProcessBatch runs ProcessDocument over several documents
	// concurrently. Per-document failures are recorded in the report,
	// not returned as an error.
	ProcessBatch(ctx context.Context, ins []PipelineInput, force bool) (*InsightReport, error)
}

// InsightReport summarises a pipeline run.
type InsightReport struct {
	// Documents is the number of documents processed.
	Documents int

	// Skipped is the number of documents left alone because insights
	// already existed.
	Skipped int

	// Candidates is the number of raw insights extracted before
	// filtering.
	Candidates int

	// Stored is the number of insights that survived filtering and
	// were persisted.
	Stored int

	// ByCategory and BySeverity count stored insights per vocabulary
	// value. Nil when nothing was stored.
	ByCategory map[domain.InsightCategory]int
	BySeverity map[domain.Severity]int

	// Elapsed is the wall-clock time spent on the run.
	Elapsed time.Duration

	// Failed maps object identities to the error that stopped them.
	Failed map[string]string
}
