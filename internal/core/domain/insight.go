package domain

import (
	"fmt"
	"time"
)

// InsightCategory is the closed vocabulary of insight types.
type InsightCategory string

// The fixed insight categories.
const (
	CategoryActionItem          InsightCategory = "action_item"
	CategoryDecision            InsightCategory = "decision"
	CategoryRisk                InsightCategory = "risk"
	CategoryOpportunity         InsightCategory = "opportunity"
	CategoryBudgetImpact        InsightCategory = "budget_impact"
	CategoryTimelineChange      InsightCategory = "timeline_change"
	CategoryBlocker             InsightCategory = "blocker"
	CategoryMilestone           InsightCategory = "milestone"
	CategoryDependency          InsightCategory = "dependency"
	CategoryStakeholderConcern  InsightCategory = "stakeholder_concern"
	CategoryComplianceIssue     InsightCategory = "compliance_issue"
	CategoryStrategicInitiative InsightCategory = "strategic_initiative"
	CategoryPerformanceMetric   InsightCategory = "performance_metric"
)

// InsightCategories lists every valid category.
var InsightCategories = []InsightCategory{
	CategoryActionItem,
	CategoryDecision,
	CategoryRisk,
	CategoryOpportunity,
	CategoryBudgetImpact,
	CategoryTimelineChange,
	CategoryBlocker,
	CategoryMilestone,
	CategoryDependency,
	CategoryStakeholderConcern,
	CategoryComplianceIssue,
	CategoryStrategicInitiative,
	CategoryPerformanceMetric,
}

// Valid reports whether the category is in the closed vocabulary.
func (c InsightCategory) Valid() bool {
	for _, known := range InsightCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the business-impact severity of an insight.
type Severity string

// The fixed severity levels.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Valid reports whether the severity is one of the fixed levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Weight returns the ranking weight for the severity.
// Unknown severities rank lowest.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 1
}

// InsightRecord is a structured business fact extracted from one document.
// At most MaxInsightsPerDocument records persist per source document.
type InsightRecord struct {
	// ID is the unique identifier for the record.
	ID string

	// ObjectID is the source document identity ("area/path").
	ObjectID string

	// ProjectID is the optional owning project identifier.
	ProjectID string

	// Category is the insight type, from the closed vocabulary.
	Category InsightCategory

	// Title is an executive-level summary.
	Title string

	// Description explains the business impact and recommended action.
	Description string

	// Severity is the business-impact level.
	Severity Severity

	// Confidence is the extraction confidence, always in [0,1].
	Confidence float64

	// FinancialImpact is the signed monetary impact, when one was
	// identified. Nil means no financial figure was mentioned.
	FinancialImpact *float64

	// Assignee is the person named as responsible, if any.
	Assignee string

	// DueDate is the deadline in YYYY-MM-DD form, if one was mentioned.
	DueDate string

	// DocumentDate is when the underlying document or meeting occurred,
	// in YYYY-MM-DD form. Distinct from CreatedAt, which is when this
	// record was extracted.
	DocumentDate string

	// Quotes holds verbatim supporting text from the document.
	Quotes []string

	// Stakeholders lists affected people or roles.
	Stakeholders []string

	// Dependencies lists tasks or projects this insight depends on.
	Dependencies []string

	// UrgencyIndicators holds phrases from the document signalling urgency.
	UrgencyIndicators []string

	// CriticalPathImpact is set when the insight affects a project's
	// critical path.
	CriticalPathImpact bool

	// Resolved is flipped by an explicit resolve operation, never by
	// the extraction pipeline.
	Resolved bool

	// GeneratedBy names the model that produced the record.
	GeneratedBy string

	// CreatedAt is the extraction timestamp.
	CreatedAt time.Time

	// Metadata carries extraction context (window index, document title).
	Metadata map[string]any
}

// MaxInsightsPerDocument caps how many insight records persist per document
// after quality filtering.
const MaxInsightsPerDocument = 5

// Validate checks the record's closed-vocabulary and range invariants.
func (r *InsightRecord) Validate() error {
	if r.ObjectID == "" {
		return fmt.Errorf("%w: insight has no source document", ErrInvalidInput)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: insight has no title", ErrInvalidInput)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown insight category %q", ErrInvalidInput, r.Category)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, r.Severity)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %f outside [0,1]", ErrInvalidInput, r.Confidence)
	}
	return nil
}
