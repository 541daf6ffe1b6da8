package insights

import (
	"fmt"
	"strings"
)

// businessContext frames every extraction prompt.
const businessContext = `You are analysing business documents for a professional services firm.
Focus on extracting insights that directly impact:
- Project delivery and timelines
- Financial performance and budget management
- Risk management and mitigation
- Stakeholder relationships and communication
- Resource allocation and team performance
- Strategic decision making`

// classificationPrompt asks the model for a structured judgment of the
// document's type and business context.
func classificationPrompt(title, text string) string {
	preview := text
	if len(preview) > 1000 {
		preview = preview[:1000] + "..."
	}
	return fmt.Sprintf(`Analyse this document and classify its type and business context.

Title: %s
Content preview: %s

Return JSON with:
- document_type: meeting_transcript, project_plan, status_report, proposal, contract, email, general_document
- business_domain: technology, consulting, finance, marketing, operations
- urgency_level: low, medium, high, critical
- key_stakeholders: list of roles/people mentioned
- contains_decisions: boolean
- contains_action_items: boolean
- contains_financial_data: boolean
- contains_timeline_info: boolean`, title, preview)
}

// extractionSystemPrompt builds the stage-2 system prompt with the
// document analysis threaded in.
func extractionSystemPrompt(analysis documentAnalysis, maxCandidates int) string {
	categories := []string{
		"action_item", "decision", "risk", "opportunity", "budget_impact",
		"timeline_change", "blocker", "milestone", "dependency",
		"stakeholder_concern", "compliance_issue", "strategic_initiative",
		"performance_metric",
	}

	return fmt.Sprintf(`You are an elite business intelligence analyst extracting the most important insights.

EXTRACTION REQUIREMENTS:
1. Extract MAXIMUM %d insights per section
2. Focus on insights that require executive attention or action
3. Include significant business impacts (revenue, costs, risks, decisions)
4. Ignore routine operational details unless they indicate major problems
5. Each insight must be unique and actionable

%s

Document Context:
- Type: %s
- Domain: %s
- Urgency: %s
- Key Stakeholders: %s

For each insight, provide:
- insight_type: one of %s
- title: executive-level summary (max 80 chars)
- description: business impact and recommended actions (max 300 chars)
- business_impact: specific impact on business objectives
- severity: critical/high/medium/low
- confidence_score: 0.0-1.0, be realistic
- assignee: specific person mentioned (if any)
- due_date: YYYY-MM-DD format if a timeline is mentioned
- document_date: YYYY-MM-DD format when this meeting/document occurred
- financial_impact: numeric value if money is mentioned (positive or negative)
- urgency_indicators: list of phrases that indicate urgency
- stakeholders_affected: people/roles impacted
- exact_quotes: verbatim text that supports this insight
- measurable_outcome: how to measure success or completion
- critical_path_impact: true if it affects the project critical path
- dependencies: other tasks/projects this depends on

Return a JSON array of insights.`,
		maxCandidates,
		businessContext,
		analysis.DocumentType,
		analysis.BusinessDomain,
		analysis.UrgencyLevel,
		strings.Join(analysis.KeyStakeholders, ", "),
		strings.Join(categories, "|"))
}

// extractionUserPrompt wraps one extraction window.
func extractionUserPrompt(title, window string, index, total int) string {
	return fmt.Sprintf(`Document Title: %s
Section %d of %d:

%s

Extract all business-critical insights from this section. Focus on actionable
intelligence that a CEO, project manager, or department head could act upon.`,
		title, index+1, total, window)
}
