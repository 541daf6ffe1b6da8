package insights

import (
	"sort"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/logger"
)

// Quality floor and dedup thresholds for stage 4.
const (
	minConfidence     = 0.7
	minTitleLength    = 10
	minDescLength     = 20
	titleSimilarity   = 0.7
	descSimilarity    = 0.8
	urgencyMultiplier = 1.3
	financialMultiplier = 1.5
	criticalPathMultiplier = 2.0
)

// routinePhrases mark insights that merely narrate meeting mechanics.
var routinePhrases = []string{
	"meeting held", "meeting scheduled", "attendees present",
	"agenda reviewed", "minutes taken", "next meeting",
	"will follow up", "will check back",
}

// filterAndRank applies the stage-4 quality gate: drop low-confidence,
// low-quality or under-specified candidates (unless they carry financial
// impact or touch the critical path), deduplicate by textual similarity
// keeping the higher-confidence record, rank by composite business-impact
// score, and truncate to the per-document cap. minQuality raises the
// floor on the computed quality score; 0 disables it.
func filterAndRank(candidates []*scoredInsight, minQuality float64) []*domain.InsightRecord {
	var kept []*scoredInsight
	for _, c := range candidates {
		if passesQualityGate(c, minQuality) {
			kept = append(kept, c)
		} else {
			logger.Debug("Filtered insight: %s (confidence %.2f, quality %.2f)", c.record.Title, c.record.Confidence, c.quality)
		}
	}

	deduped := deduplicate(kept)

	sort.SliceStable(deduped, func(i, j int) bool {
		return rankScore(deduped[i].record) > rankScore(deduped[j].record)
	})

	if len(deduped) > domain.MaxInsightsPerDocument {
		logger.Debug("Limiting insights from %d to %d", len(deduped), domain.MaxInsightsPerDocument)
		deduped = deduped[:domain.MaxInsightsPerDocument]
	}

	out := make([]*domain.InsightRecord, len(deduped))
	for i, c := range deduped {
		out[i] = c.record
	}
	return out
}

// passesQualityGate applies the confidence, quality and length floors.
// Insights with a financial figure or critical-path impact bypass the
// floors; terse high-value findings must not be discarded.
func passesQualityGate(c *scoredInsight, minQuality float64) bool {
	rec := c.record
	if rec.FinancialImpact != nil || rec.CriticalPathImpact {
		return !isRoutine(rec)
	}
	if rec.Confidence < minConfidence {
		return false
	}
	if minQuality > 0 && c.quality < minQuality {
		return false
	}
	if len(rec.Title) < minTitleLength || len(rec.Description) < minDescLength {
		return false
	}
	return !isRoutine(rec)
}

// isRoutine rejects meeting-mechanics narration unless the record carries
// real business weight.
func isRoutine(rec *domain.InsightRecord) bool {
	text := strings.ToLower(rec.Title + " " + rec.Description)
	for _, phrase := range routinePhrases {
		if strings.Contains(text, phrase) {
			if rec.FinancialImpact != nil || rec.CriticalPathImpact ||
				rec.Severity == domain.SeverityCritical || len(rec.UrgencyIndicators) > 0 {
				return false
			}
			return true
		}
	}
	return false
}

// deduplicate removes pairwise near-duplicates by word-set Jaccard
// similarity over title and description. The thresholds are inclusive: a
// pair at exactly 0.7 title or 0.8 description overlap collides. On a
// collision the higher-confidence record wins.
func deduplicate(candidates []*scoredInsight) []*scoredInsight {
	var unique []*scoredInsight

	for _, c := range candidates {
		duplicate := false
		for i, existing := range unique {
			titleSim := jaccardSimilarity(c.record.Title, existing.record.Title)
			descSim := jaccardSimilarity(c.record.Description, existing.record.Description)
			if titleSim >= titleSimilarity || descSim >= descSimilarity {
				if c.record.Confidence > existing.record.Confidence {
					unique[i] = c
				}
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, c)
		}
	}
	return unique
}

// rankScore is the composite business-impact score. All factors are
// multiplicative so a critical-path budget item with urgency outranks
// anything merely severe.
func rankScore(rec *domain.InsightRecord) float64 {
	score := rec.Severity.Weight() * rec.Confidence
	if len(rec.UrgencyIndicators) > 0 {
		score *= urgencyMultiplier
	}
	if rec.FinancialImpact != nil {
		score *= financialMultiplier
	}
	if rec.CriticalPathImpact {
		score *= criticalPathMultiplier
	}
	return score
}

// jaccardSimilarity computes word-set overlap between two strings in [0,1].
func jaccardSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}
