// Package cli provides the cobra command tree driving the application core.
// Commands talk to the core exclusively through the driving ports; wiring
// happens in main, which hands the constructed services to Execute.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/core/ports/driving"
	"github.com/meridian-labs/docsight/internal/logger"
)

// version is overridden at build time via ldflags.
var version = "dev"

// Services injected by main. Commands guard against nil so the tree can be
// inspected (help, completion) without a full wiring.
var (
	syncOrchestrator driving.SyncOrchestrator
	insightStore     driven.InsightStore
	configStore      driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsight",
	Short: "Document ingestion and business insight extraction",
	Long: `docsight watches object storage areas for documents, ingests them into
a searchable chunk store and extracts business insights (risks, blockers,
action items, budget impacts) with an LLM.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services bundles everything the command tree needs.
type Services struct {
	Sync     driving.SyncOrchestrator
	Insights driven.InsightStore
	Config   driven.ConfigStore
	Version  string
}

// Execute installs the services and runs the command tree.
func Execute(ctx context.Context, services Services) error {
	syncOrchestrator = services.Sync
	insightStore = services.Insights
	configStore = services.Config
	if services.Version != "" {
		version = services.Version
	}

	return rootCmd.ExecuteContext(ctx)
}
