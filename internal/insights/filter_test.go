package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docsight/internal/core/domain"
)

func candidate(title, desc string, confidence float64) *scoredInsight {
	return &scoredInsight{
		record: &domain.InsightRecord{
			ID:          title,
			ObjectID:    "meetings/notes.txt",
			Category:    domain.CategoryActionItem,
			Title:       title,
			Description: desc,
			Severity:    domain.SeverityMedium,
			Confidence:  confidence,
		},
	}
}

func TestFilterAndRank_DropsLowConfidence(t *testing.T) {
	out := filterAndRank([]*scoredInsight{
		candidate("Confirm the revised launch date", "Client needs the new launch date confirmed in writing.", 0.9),
		candidate("Maybe look into something later", "A vague possibility that might matter at some point eventually.", 0.6),
	}, 0)

	require.Len(t, out, 1)
	assert.Equal(t, "Confirm the revised launch date", out[0].Title)
}

func TestFilterAndRank_MinQualityFloor(t *testing.T) {
	strong := candidate("Confirm the revised launch date", "Client needs the new launch date confirmed in writing.", 0.9)
	strong.quality = 0.8
	weak := candidate("Send the usual reminder to the team", "The team should receive the usual weekly reminder about timesheets.", 0.85)
	weak.quality = 0.4

	out := filterAndRank([]*scoredInsight{strong, weak}, 0.6)

	require.Len(t, out, 1)
	assert.Equal(t, "Confirm the revised launch date", out[0].Title)
}

func TestFilterAndRank_FinancialImpactBypassesConfidenceFloor(t *testing.T) {
	impact := 10000.0
	weak := candidate("Overrun", "Short.", 0.6)
	weak.record.FinancialImpact = &impact

	out := filterAndRank([]*scoredInsight{weak}, 0)

	require.Len(t, out, 1)
	require.NotNil(t, out[0].FinancialImpact)
	assert.InDelta(t, 10000, *out[0].FinancialImpact, 1e-9)
}

func TestFilterAndRank_CriticalPathBypassesLengthFloor(t *testing.T) {
	short := candidate("DB locked", "Short.", 0.5)
	short.record.CriticalPathImpact = true

	out := filterAndRank([]*scoredInsight{short}, 0)

	require.Len(t, out, 1)
}

func TestFilterAndRank_RejectsRoutineNarration(t *testing.T) {
	routine := candidate(
		"Meeting held with the platform team",
		"Attendees present discussed the agenda and the next meeting was scheduled.",
		0.9,
	)

	out := filterAndRank([]*scoredInsight{routine}, 0)

	assert.Empty(t, out)
}

func TestFilterAndRank_RoutinePhrasingKeptWhenCritical(t *testing.T) {
	urgent := candidate(
		"Meeting held on the outage",
		"Attendees present agreed the outage must be resolved before Monday's demo.",
		0.9,
	)
	urgent.record.Severity = domain.SeverityCritical

	out := filterAndRank([]*scoredInsight{urgent}, 0)

	require.Len(t, out, 1)
}

func TestFilterAndRank_DeduplicatesKeepingHigherConfidence(t *testing.T) {
	a := candidate(
		"Client approved the extra integration budget",
		"The client approved additional budget for the integration phase of the project.",
		0.75,
	)
	b := candidate(
		"Client approved the extra integration budget today",
		"The client approved additional budget for the integration phase of the project.",
		0.92,
	)

	out := filterAndRank([]*scoredInsight{a, b}, 0)

	require.Len(t, out, 1)
	assert.InDelta(t, 0.92, out[0].Confidence, 1e-9)
}

func TestDeduplicate_ThresholdIsInclusive(t *testing.T) {
	// Distinct titles; descriptions share 8 of 10 distinct words, a
	// word-set overlap of exactly 0.8.
	a := candidate(
		"Vendor contract penalty exposure",
		"alpha bravo charlie delta echo foxtrot golf hotel india",
		0.9,
	)
	b := candidate(
		"Timeline slip on design approvals",
		"alpha bravo charlie delta echo foxtrot golf hotel juliet",
		0.8,
	)

	out := deduplicate([]*scoredInsight{a, b})

	require.Len(t, out, 1)
	assert.InDelta(t, 0.9, out[0].record.Confidence, 1e-9)
}

func TestFilterAndRank_CapsAtFivePerDocument(t *testing.T) {
	pairs := [][2]string{
		{"Approve the vendor contract renewal", "Procurement wants the vendor renewal countersigned before month end."},
		{"Hire two additional platform engineers", "Recruiting opens requisitions for extra backend capacity next sprint."},
		{"Migrate billing exports to warehouse", "Finance exports move off spreadsheets onto scheduled warehouse jobs."},
		{"Escalate datacenter cooling incident", "Facilities reported sustained overheating in the primary server room."},
		{"Confirm conference sponsorship budget", "Marketing needs sign-off on the annual event sponsorship spend."},
		{"Replace deprecated authentication library", "Security flagged the login dependency as unmaintained upstream."},
		{"Schedule quarterly compliance audit", "Legal requested an external review of data retention practices."},
		{"Document incident response runbook", "On-call rotations lack a written escalation procedure today."},
	}

	var candidates []*scoredInsight
	for _, p := range pairs {
		candidates = append(candidates, candidate(p[0], p[1], 0.8))
	}

	out := filterAndRank(candidates, 0)

	assert.Len(t, out, domain.MaxInsightsPerDocument)
}

func TestFilterAndRank_RanksByBusinessWeight(t *testing.T) {
	impact := 50000.0

	plain := candidate("Schedule follow-up with design vendor", "The design vendor needs a follow-up session before the handoff.", 0.9)
	plain.record.Severity = domain.SeverityHigh

	weighted := candidate("Contract penalty clause triggers next month", "The penalty clause activates unless the milestone ships on schedule.", 0.8)
	weighted.record.Severity = domain.SeverityHigh
	weighted.record.FinancialImpact = &impact
	weighted.record.CriticalPathImpact = true
	weighted.record.UrgencyIndicators = []string{"penalty activates next month"}

	out := filterAndRank([]*scoredInsight{plain, weighted}, 0)

	require.Len(t, out, 2)
	assert.Equal(t, "Contract penalty clause triggers next month", out[0].Title)
	assert.Equal(t, "Schedule follow-up with design vendor", out[1].Title)
}

func TestJaccardSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, jaccardSimilarity("budget approved today", "budget approved today"), 1e-9)
	assert.InDelta(t, 0.5, jaccardSimilarity("alpha bravo charlie", "alpha bravo delta"), 1e-9)
	assert.Zero(t, jaccardSimilarity("", "anything at all"))
	assert.Zero(t, jaccardSimilarity("completely different words", "nothing shared here"))
}
