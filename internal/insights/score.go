package insights

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

// scoredInsight couples a structured record with its derived quality
// signals, used during filtering and ranking.
type scoredInsight struct {
	record  *domain.InsightRecord
	quality float64
}

// genericTitleWords mark a short title as too vague to act on.
var genericTitleWords = []string{
	"update", "review", "discuss", "consider", "evaluate",
	"monitor", "track", "assess", "analyze", "investigate",
}

// enhance converts a raw model candidate into a full InsightRecord and
// computes its quality score. Returns nil when the candidate is missing
// the essentials (title, description).
func (e *Engine) enhance(raw RawInsight, objectID, title string, analysis documentAnalysis) *scoredInsight {
	if strings.TrimSpace(raw.Title) == "" || strings.TrimSpace(raw.Description) == "" {
		return nil
	}

	category := domain.InsightCategory(strings.ToLower(strings.TrimSpace(raw.Category)))
	if !category.Valid() {
		category = domain.CategoryActionItem
	}

	severity := domain.Severity(strings.ToLower(strings.TrimSpace(raw.Severity)))
	if !severity.Valid() {
		severity = domain.SeverityMedium
	}

	confidence := raw.Confidence
	if confidence <= 0 {
		confidence = 0.7
	}
	// A verbatim supporting quote is direct evidence; boost confidence.
	if hasQuote(raw.Quotes) {
		confidence = min(0.95, confidence+0.15)
	}
	confidence = clamp01(confidence)

	dueDate := raw.DueDate
	if !validDateString(dueDate) {
		dueDate = ""
	}
	documentDate := raw.DocumentDate
	if !validDateString(documentDate) {
		documentDate = extractDateFromTitle(title)
	}

	record := &domain.InsightRecord{
		ID:                 uuid.NewString(),
		ObjectID:           objectID,
		Category:           category,
		Title:              truncateRunes(raw.Title, 100),
		Description:        truncateRunes(raw.Description, 500),
		Severity:           severity,
		Confidence:         confidence,
		FinancialImpact:    raw.FinancialImpact,
		Assignee:           raw.Assignee,
		DueDate:            dueDate,
		DocumentDate:       documentDate,
		Quotes:             raw.Quotes,
		Stakeholders:       raw.Stakeholders,
		Dependencies:       raw.Dependencies,
		UrgencyIndicators:  raw.UrgencyIndicators,
		CriticalPathImpact: raw.CriticalPathImpact,
		GeneratedBy:        e.llm.ModelName(),
		CreatedAt:          time.Now(),
		Metadata: map[string]any{
			"doc_title":       title,
			"business_impact": raw.BusinessImpact,
		},
	}

	return &scoredInsight{
		record:  record,
		quality: qualityScore(record, raw),
	}
}

// qualityScore combines confidence, clarity, relevance, novelty and a
// SMART-criteria sub-score with fixed weights.
func qualityScore(rec *domain.InsightRecord, raw RawInsight) float64 {
	smart := 0.0
	if isSpecific(rec.Title) {
		smart += 0.2
	}
	if raw.MeasurableOutcome != "" {
		smart += 0.2
	}
	if isActionable(rec.Category) {
		smart += 0.3
	}
	relevance := relevanceScore(rec, raw)
	if relevance > 0.7 {
		smart += 0.2
	}
	if rec.DueDate != "" {
		smart += 0.1
	}

	return rec.Confidence*0.25 +
		clarityScore(rec)*0.20 +
		relevance*0.25 +
		noveltyScore()*0.15 +
		smart*0.15
}

// isSpecific rejects short titles built around generic verbs.
func isSpecific(title string) bool {
	if len(title) <= 10 {
		return false
	}
	lower := strings.ToLower(title)
	if len(strings.Fields(title)) < 5 {
		for _, w := range genericTitleWords {
			if strings.Contains(lower, w) {
				return false
			}
		}
	}
	return true
}

// isActionable reports whether the category calls for a direct response.
func isActionable(category domain.InsightCategory) bool {
	switch category {
	case domain.CategoryActionItem, domain.CategoryDecision, domain.CategoryBlocker:
		return true
	}
	return false
}

func clarityScore(rec *domain.InsightRecord) float64 {
	score := 0.5
	if len(rec.Title) > 20 && len(rec.Title) < 100 {
		score += 0.2
	}
	if len(rec.Description) > 100 {
		score += 0.2
	}
	if hasQuote(rec.Quotes) {
		score += 0.1
	}
	return min(1.0, score)
}

func relevanceScore(rec *domain.InsightRecord, raw RawInsight) float64 {
	score := 0.7
	switch rec.Category {
	case domain.CategoryRisk, domain.CategoryBlocker, domain.CategoryComplianceIssue:
		score += 0.2
	}
	if raw.BusinessImpact != "" {
		score += 0.1
	}
	return min(1.0, score)
}

// noveltyScore is a fixed base for now. Comparing against previously
// stored insights for the same project would refine it.
func noveltyScore() float64 { return 0.7 }

func hasQuote(quotes []string) bool {
	for _, q := range quotes {
		if strings.TrimSpace(q) != "" {
			return true
		}
	}
	return false
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
