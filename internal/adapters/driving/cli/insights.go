package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
)

var (
	insightsCategory   string
	insightsSeverity   string
	insightsObject     string
	insightsResolved   bool
	insightsUnresolved bool
	insightsSince      string
	insightsUntil      string
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Browse and manage extracted insights",
	Long: `Lists, resolves and assigns the business insights extracted from
ingested documents.`,
	RunE: runInsightsList,
}

var insightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List insights",
	RunE:  runInsightsList,
}

var insightsResolveCmd = &cobra.Command{
	Use:   "resolve <insight-id>",
	Short: "Mark an insight as resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsightsResolve,
}

var insightsAssignCmd = &cobra.Command{
	Use:   "assign <insight-id> <assignee>",
	Short: "Assign an insight to a person",
	Args:  cobra.ExactArgs(2),
	RunE:  runInsightsAssign,
}

func init() {
	for _, c := range []*cobra.Command{insightsCmd, insightsListCmd} {
		c.Flags().StringVar(&insightsCategory, "category", "", "filter by category (e.g. risk, action_item)")
		c.Flags().StringVar(&insightsSeverity, "severity", "", "filter by severity (critical, high, medium, low)")
		c.Flags().StringVar(&insightsObject, "object", "", "filter by source document identity (area/path)")
		c.Flags().BoolVar(&insightsResolved, "resolved", false, "only resolved insights")
		c.Flags().BoolVar(&insightsUnresolved, "unresolved", false, "only unresolved insights")
		c.Flags().StringVar(&insightsSince, "since", "", "only documents dated on or after this date (YYYY-MM-DD)")
		c.Flags().StringVar(&insightsUntil, "until", "", "only documents dated on or before this date (YYYY-MM-DD)")
	}
	insightsCmd.AddCommand(insightsListCmd)
	insightsCmd.AddCommand(insightsResolveCmd)
	insightsCmd.AddCommand(insightsAssignCmd)
	rootCmd.AddCommand(insightsCmd)
}

func runInsightsList(cmd *cobra.Command, _ []string) error {
	if insightStore == nil {
		return errors.New("insight store not configured")
	}

	if insightsObject != "" {
		records, err := insightStore.ListByObject(cmd.Context(), insightsObject)
		if err != nil {
			return err
		}
		printInsights(cmd, records)
		return nil
	}

	filter, err := buildInsightFilter()
	if err != nil {
		return err
	}

	records, err := insightStore.ListByFilter(cmd.Context(), filter)
	if err != nil {
		return err
	}
	printInsights(cmd, records)
	return nil
}

func runInsightsResolve(cmd *cobra.Command, args []string) error {
	if insightStore == nil {
		return errors.New("insight store not configured")
	}

	id := args[0]
	if err := insightStore.Resolve(cmd.Context(), id); err != nil {
		return fmt.Errorf("resolve %s: %w", id, err)
	}
	cmd.Printf("Insight %s resolved.\n", id)
	return nil
}

func runInsightsAssign(cmd *cobra.Command, args []string) error {
	if insightStore == nil {
		return errors.New("insight store not configured")
	}

	id, assignee := args[0], args[1]
	if err := insightStore.Assign(cmd.Context(), id, assignee); err != nil {
		return fmt.Errorf("assign %s: %w", id, err)
	}
	cmd.Printf("Insight %s assigned to %s.\n", id, assignee)
	return nil
}

// buildInsightFilter validates the list flags against the closed
// vocabularies and the date format.
func buildInsightFilter() (driven.InsightFilter, error) {
	var filter driven.InsightFilter

	if insightsCategory != "" {
		category := domain.InsightCategory(insightsCategory)
		if !category.Valid() {
			return filter, fmt.Errorf("unknown category %q", insightsCategory)
		}
		filter.Category = category
	}
	if insightsSeverity != "" {
		severity := domain.Severity(insightsSeverity)
		if !severity.Valid() {
			return filter, fmt.Errorf("unknown severity %q", insightsSeverity)
		}
		filter.Severity = severity
	}

	switch {
	case insightsResolved && insightsUnresolved:
		return filter, errors.New("--resolved and --unresolved are mutually exclusive")
	case insightsResolved:
		resolved := true
		filter.Resolved = &resolved
	case insightsUnresolved:
		resolved := false
		filter.Resolved = &resolved
	}

	if insightsSince != "" {
		from, err := time.Parse("2006-01-02", insightsSince)
		if err != nil {
			return filter, fmt.Errorf("invalid --since date %q, want YYYY-MM-DD", insightsSince)
		}
		filter.From = from
	}
	if insightsUntil != "" {
		to, err := time.Parse("2006-01-02", insightsUntil)
		if err != nil {
			return filter, fmt.Errorf("invalid --until date %q, want YYYY-MM-DD", insightsUntil)
		}
		filter.To = to
	}

	return filter, nil
}

func printInsights(cmd *cobra.Command, records []domain.InsightRecord) {
	if len(records) == 0 {
		cmd.Println("No insights found.")
		return
	}

	for _, rec := range records {
		marker := " "
		if rec.Resolved {
			marker = "x"
		}
		cmd.Printf("[%s] %-8s %-16s %s\n", marker, rec.Severity, rec.Category, rec.Title)
		cmd.Printf("    id: %s  source: %s", rec.ID, rec.ObjectID)
		if rec.DocumentDate != "" {
			cmd.Printf("  date: %s", rec.DocumentDate)
		}
		cmd.Println()
		if rec.Description != "" {
			cmd.Printf("    %s\n", rec.Description)
		}
		if rec.FinancialImpact != nil {
			cmd.Printf("    financial impact: $%.2f\n", *rec.FinancialImpact)
		}
		if rec.Assignee != "" {
			cmd.Printf("    assignee: %s", rec.Assignee)
			if rec.DueDate != "" {
				cmd.Printf("  due: %s", rec.DueDate)
			}
			cmd.Println()
		}
	}
	cmd.Printf("%d insights.\n", len(records))
}
