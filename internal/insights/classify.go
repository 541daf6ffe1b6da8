package insights

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/logger"
)

// documentAnalysis is the stage-1 judgment of a document's type and
// business context, threaded into the extraction prompts.
type documentAnalysis struct {
	DocumentType         string   `json:"document_type"`
	BusinessDomain       string   `json:"business_domain"`
	UrgencyLevel         string   `json:"urgency_level"`
	KeyStakeholders      []string `json:"key_stakeholders"`
	ContainsDecisions    bool     `json:"contains_decisions"`
	ContainsActionItems  bool     `json:"contains_action_items"`
	ContainsFinancialData bool    `json:"contains_financial_data"`
	ContainsTimelineInfo bool     `json:"contains_timeline_info"`
}

// classify asks the model to judge the document. Any LLM or parse failure
// falls back to deterministic keyword analysis; classification must never
// stop the pipeline.
func (e *Engine) classify(ctx context.Context, title, text string) documentAnalysis {
	response, err := e.llm.Generate(ctx, classificationPrompt(title, text), driven.GenerateOptions{
		MaxTokens:   800,
		Temperature: 0.1,
	})
	if err != nil {
		logger.Warn("Document classification failed, using keyword fallback: %v", err)
		return fallbackAnalysis(title, text)
	}

	if analysis, ok := decodeAnalysis(response); ok {
		return analysis
	}
	logger.Warn("Unparseable classification response, using keyword fallback")
	return fallbackAnalysis(title, text)
}

func decodeAnalysis(response string) (documentAnalysis, bool) {
	var analysis documentAnalysis

	candidate := strings.TrimSpace(response)
	if m := fencedJSONPattern.FindStringSubmatch(candidate); m != nil {
		candidate = m[1]
	}
	if err := json.Unmarshal([]byte(candidate), &analysis); err != nil {
		return documentAnalysis{}, false
	}
	if analysis.DocumentType == "" {
		return documentAnalysis{}, false
	}
	return analysis, true
}

var (
	fullNamePattern    = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
	speakerNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+): `)
)

// maxFallbackStakeholders bounds name extraction noise.
const maxFallbackStakeholders = 10

// fallbackAnalysis classifies by keyword and pattern matching alone.
func fallbackAnalysis(title, text string) documentAnalysis {
	titleLower := strings.ToLower(title)
	textLower := strings.ToLower(text)

	docType := "general_document"
	switch {
	case containsAny(titleLower, "meeting", "call", "standup", "sync"):
		docType = "meeting_transcript"
	case containsAny(titleLower, "plan", "roadmap", "schedule"):
		docType = "project_plan"
	case containsAny(titleLower, "status", "update", "report"):
		docType = "status_report"
	case containsAny(titleLower, "proposal", "sow", "statement"):
		docType = "proposal"
	}

	seen := map[string]bool{}
	var stakeholders []string
	for _, p := range []*regexp.Regexp{fullNamePattern, speakerNamePattern} {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if !seen[name] && len(stakeholders) < maxFallbackStakeholders {
				seen[name] = true
				stakeholders = append(stakeholders, name)
			}
		}
	}

	return documentAnalysis{
		DocumentType:         docType,
		BusinessDomain:       "consulting",
		UrgencyLevel:         "medium",
		KeyStakeholders:      stakeholders,
		ContainsDecisions:    containsAny(textLower, "decision", "decided"),
		ContainsActionItems:  containsAny(textLower, "action", "todo"),
		ContainsFinancialData: strings.Contains(text, "$") || strings.Contains(textLower, "budget"),
		ContainsTimelineInfo: containsAny(textLower, "deadline", "due"),
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
