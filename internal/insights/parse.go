package insights

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// RawInsight is one candidate insight as the model returned it, before
// enhancement and validation.
type RawInsight struct {
	Category           string
	Title              string
	Description        string
	Severity           string
	Confidence         float64
	BusinessImpact     string
	Assignee           string
	DueDate            string
	DocumentDate       string
	FinancialImpact    *float64
	UrgencyIndicators  []string
	Stakeholders       []string
	Quotes             []string
	Dependencies       []string
	CriticalPathImpact bool
	MeasurableOutcome  string
}

// ParseStatus tags how much of the model's response survived parsing.
type ParseStatus int

const (
	// ParseOk means the response was well-formed JSON.
	ParseOk ParseStatus = iota

	// ParsePartial means insights were recovered through a degraded
	// path (fenced block, embedded array, key:value lines, or keyword
	// stubs). Warnings describe what was lost.
	ParsePartial

	// ParseFailed means nothing usable was recovered.
	ParseFailed
)

// ParseResult is the outcome of parsing one extraction response. Parsing
// never returns an error: malformed output degrades quality, not
// availability.
type ParseResult struct {
	Status   ParseStatus
	Insights []RawInsight
	Warnings []string
	Reason   string
}

var (
	fencedJSONPattern   = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	embeddedArrayPattern = regexp.MustCompile(`\[\s*\{[\s\S]*?\}\s*\]`)
)

// ParseInsights recovers candidate insights from a model response.
// Attempts, in order: direct JSON (array or {"insights": [...]} wrapper),
// a fenced code block, a bare array-of-objects embedded in prose,
// line-oriented key:value text, and finally keyword-sniffed stubs.
func ParseInsights(response string) ParseResult {
	response = strings.TrimSpace(response)
	if response == "" {
		return ParseResult{Status: ParseFailed, Reason: "empty response"}
	}

	if insights, ok := decodeInsightList([]byte(response)); ok {
		return ParseResult{Status: ParseOk, Insights: insights}
	}

	if m := fencedJSONPattern.FindStringSubmatch(response); m != nil {
		if insights, ok := decodeInsightList([]byte(m[1])); ok {
			return ParseResult{
				Status:   ParsePartial,
				Insights: insights,
				Warnings: []string{"insights recovered from fenced code block"},
			}
		}
	}

	if m := embeddedArrayPattern.FindString(response); m != "" {
		if insights, ok := decodeInsightList([]byte(m)); ok {
			return ParseResult{
				Status:   ParsePartial,
				Insights: insights,
				Warnings: []string{"insights recovered from embedded array"},
			}
		}
	}

	if insights := parseKeyValueLines(response); len(insights) > 0 {
		return ParseResult{
			Status:   ParsePartial,
			Insights: insights,
			Warnings: []string{"insights recovered from key:value text"},
		}
	}

	if insights := keywordStubs(response); len(insights) > 0 {
		return ParseResult{
			Status:   ParsePartial,
			Insights: insights,
			Warnings: []string{"stub insights synthesised from keyword sniffing"},
		}
	}

	return ParseResult{Status: ParseFailed, Reason: "no recognisable insight structure in response"}
}

// decodeInsightList accepts either a JSON array of objects or an object
// wrapping one under "insights".
func decodeInsightList(data []byte) ([]RawInsight, bool) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err == nil {
		return coerceAll(items), true
	}

	var wrapper map[string]any
	if err := json.Unmarshal(data, &wrapper); err == nil {
		if inner, ok := wrapper["insights"].([]any); ok {
			var items []map[string]any
			for _, v := range inner {
				if obj, ok := v.(map[string]any); ok {
					items = append(items, obj)
				}
			}
			return coerceAll(items), true
		}
	}
	return nil, false
}

func coerceAll(items []map[string]any) []RawInsight {
	out := make([]RawInsight, 0, len(items))
	for _, item := range items {
		out = append(out, coerceInsight(item))
	}
	return out
}

// coerceInsight converts one loosely-typed JSON object into a RawInsight.
// Models disagree about field names and value types between runs, so every
// field is read tolerantly with aliases.
func coerceInsight(m map[string]any) RawInsight {
	raw := RawInsight{
		Category:           asString(m, "insight_type", "type", "category"),
		Title:              asString(m, "title"),
		Description:        asString(m, "description"),
		Severity:           asString(m, "severity", "priority"),
		BusinessImpact:     asString(m, "business_impact"),
		Assignee:           asString(m, "assignee", "assigned_to"),
		DueDate:            asString(m, "due_date", "suggested_deadline"),
		DocumentDate:       asString(m, "document_date"),
		UrgencyIndicators:  asStringSlice(m, "urgency_indicators"),
		Stakeholders:       asStringSlice(m, "stakeholders_affected", "stakeholders"),
		Quotes:             asStringSlice(m, "exact_quotes", "supporting_quote", "quotes"),
		Dependencies:       asStringSlice(m, "dependencies"),
		CriticalPathImpact: asBool(m, "critical_path_impact"),
		MeasurableOutcome:  asString(m, "measurable_outcome"),
	}
	raw.Confidence = asFloat(m, "confidence_score", "confidence")
	raw.FinancialImpact = asMoney(m, "financial_impact")
	return raw
}

// parseKeyValueLines rebuilds insights from "key: value" lines. A new
// insight opens at each type/insight_type line; an insight without a title
// is dropped.
func parseKeyValueLines(text string) []RawInsight {
	var out []RawInsight
	var current *RawInsight

	flush := func() {
		if current != nil && current.Title != "" {
			out = append(out, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		key = strings.TrimLeft(key, "-* ")
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if value == "" {
			continue
		}

		switch key {
		case "type", "insight_type":
			flush()
			current = &RawInsight{Category: value, Confidence: 0.7}
		case "title":
			if current == nil {
				current = &RawInsight{Confidence: 0.7}
			}
			current.Title = value
		case "description":
			if current != nil {
				current.Description = value
			}
		case "severity", "priority":
			if current != nil {
				current.Severity = value
			}
		case "confidence", "confidence_score":
			if current != nil {
				if f, err := strconv.ParseFloat(value, 64); err == nil {
					current.Confidence = f
				}
			}
		case "assignee", "assigned_to":
			if current != nil {
				current.Assignee = value
			}
		case "financial_impact":
			if current != nil {
				if f, ok := parseMoney(value); ok {
					current.FinancialImpact = &f
				}
			}
		}
	}
	flush()
	return out
}

// keywordStubs synthesises generic insights when the response carries no
// recoverable structure but clearly talks about money, urgency or tasks.
func keywordStubs(text string) []RawInsight {
	lower := strings.ToLower(text)
	var out []RawInsight

	if strings.Contains(text, "$") || strings.Contains(lower, "budget") || strings.Contains(lower, "cost") {
		out = append(out, RawInsight{
			Category:    "budget_impact",
			Title:       "Financial Impact Identified",
			Description: "Document contains financial implications that require review.",
			Severity:    "medium",
			Confidence:  0.6,
		})
	}
	for _, word := range []string{"urgent", "critical", "emergency", "immediate"} {
		if strings.Contains(lower, word) {
			out = append(out, RawInsight{
				Category:    "risk",
				Title:       "Urgent Issue Identified",
				Description: "Document contains urgent or critical issues requiring attention.",
				Severity:    "high",
				Confidence:  0.7,
			})
			break
		}
	}
	for _, word := range []string{"action", "todo", "task", "deadline"} {
		if strings.Contains(lower, word) {
			out = append(out, RawInsight{
				Category:    "action_item",
				Title:       "Action Items Identified",
				Description: "Document contains action items or tasks that need to be completed.",
				Severity:    "medium",
				Confidence:  0.6,
			})
			break
		}
	}
	return out
}

// --- tolerant field readers ---

func asString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				return strings.TrimSpace(t)
			case float64:
				return strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
	}
	return ""
}

func asFloat(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch t := m[k].(type) {
		case float64:
			return t
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func asBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch t := m[k].(type) {
		case bool:
			return t
		case string:
			return strings.EqualFold(strings.TrimSpace(t), "true")
		}
	}
	return false
}

func asStringSlice(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch t := m[k].(type) {
		case []any:
			var out []string
			for _, v := range t {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if strings.TrimSpace(t) != "" {
				return []string{strings.TrimSpace(t)}
			}
		}
	}
	return nil
}

func asMoney(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch t := m[k].(type) {
		case float64:
			f := t
			return &f
		case string:
			if f, ok := parseMoney(t); ok {
				return &f
			}
		}
	}
	return nil
}

var moneyPattern = regexp.MustCompile(`-?[\d][\d,]*(?:\.\d+)?`)

// parseMoney extracts a signed number from formats like "$12,000" or
// "-500.50 USD".
func parseMoney(s string) (float64, bool) {
	m := moneyPattern.FindString(strings.ReplaceAll(s, "$", ""))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
