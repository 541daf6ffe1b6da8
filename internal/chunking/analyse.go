package chunking

import (
	"regexp"
	"sort"
	"strings"
)

// Chunk content classifications attached as the "chunk_type" metadata key.
const (
	kindDecision   = "decision"
	kindActionItem = "action_item"
	kindRiskIssue  = "risk_issue"
	kindTechnical  = "technical_discussion"
	kindGeneral    = "general_discussion"
)

var kindIndicators = []struct {
	kind    string
	markers []string
}{
	{kindDecision, []string{"decided", "agreed", "conclusion", "resolution", "final decision"}},
	{kindActionItem, []string{"action item", "next step", "follow up", "assigned to", "due date", "task"}},
	{kindRiskIssue, []string{"risk", "concern", "issue", "problem", "challenge", "blocker"}},
	{kindTechnical, []string{"implementation", "architecture", "technical", "system", "integration"}},
}

var businessTerms = []string{
	"budget", "timeline", "deadline", "project", "client", "stakeholder",
	"milestone", "deliverable", "resource", "team", "meeting", "review",
	"approval", "requirement", "scope", "contract", "vendor", "supplier",
}

var priorityMarkers = []string{
	"critical", "urgent", "deadline", "budget", "client", "risk",
	"blocker", "escalation", "approval", "contract", "legal",
}

var properNounPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)+\b`)

// annotate adds content analysis to a chunk's metadata: its kind, the
// business topics it mentions and an importance estimate. Existing
// strategy metadata is preserved.
func annotate(content string, meta map[string]any) map[string]any {
	if meta == nil {
		meta = map[string]any{}
	}

	kind := classifyContent(content)
	meta["chunk_type"] = kind
	if topics := extractTopics(content); len(topics) > 0 {
		meta["topics"] = topics
	}
	meta["importance"] = estimateImportance(content, kind)
	return meta
}

// classifyContent picks the first kind whose markers appear in the text.
func classifyContent(content string) string {
	lower := strings.ToLower(content)
	for _, ind := range kindIndicators {
		for _, m := range ind.markers {
			if strings.Contains(lower, m) {
				return ind.kind
			}
		}
	}
	return kindGeneral
}

// extractTopics collects mentioned business terms plus up to three
// multi-word proper nouns, capped at eight topics.
func extractTopics(content string) []string {
	lower := strings.ToLower(content)

	var topics []string
	for _, term := range businessTerms {
		if strings.Contains(lower, term) {
			topics = append(topics, term)
		}
	}

	names := properNounPattern.FindAllString(content, 3)
	sort.Strings(names)
	seen := map[string]bool{}
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			topics = append(topics, name)
		}
	}

	if len(topics) > 8 {
		topics = topics[:8]
	}
	return topics
}

// estimateImportance scores business relevance in [0,1]: a per-kind base,
// a boost per priority marker and a small boost for long detailed chunks.
func estimateImportance(content, kind string) float64 {
	base := map[string]float64{
		kindDecision:   0.9,
		kindActionItem: 0.8,
		kindRiskIssue:  0.85,
		kindTechnical:  0.6,
		kindGeneral:    0.5,
	}[kind]

	lower := strings.ToLower(content)
	for _, m := range priorityMarkers {
		if strings.Contains(lower, m) {
			base += 0.1
		}
	}

	lengthBoost := float64(len(content)) / 2000
	if lengthBoost > 0.2 {
		lengthBoost = 0.2
	}

	score := base + lengthBoost
	if score > 1 {
		score = 1
	}
	return score
}
