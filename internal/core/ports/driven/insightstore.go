package driven

import (
	"context"
	"time"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// InsightFilter narrows an insight listing. Zero values mean "any".
type InsightFilter struct {
	Category domain.InsightCategory
	Severity domain.Severity

	// Resolved filters on resolution status when non-nil.
	Resolved *bool

	// From/To bound the document date (inclusive) when non-zero.
	From time.Time
	To   time.Time
}

// InsightStore persists extracted insight records.
type InsightStore interface {
	// Insert stores a new insight record.
	Insert(ctx context.Context, rec *domain.InsightRecord) error

	// ListByObject returns all insights for a source document.
	ListByObject(ctx context.Context, objectID string) ([]domain.InsightRecord, error)

	// ListByFilter returns insights matching the filter.
	ListByFilter(ctx context.Context, filter InsightFilter) ([]domain.InsightRecord, error)

	// Resolve marks an insight as resolved.
	Resolve(ctx context.Context, id string) error

	// Assign sets the assignee on an insight.
	Assign(ctx context.Context, id, assignee string) error

	// DeleteByObject removes all insights for a source document.
	// Used before a forced reprocess.
	DeleteByObject(ctx context.Context, objectID string) error
}
