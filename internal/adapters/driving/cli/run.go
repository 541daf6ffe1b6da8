package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docsight/internal/core/ports/driving"
)

var (
	runAreas      []string
	runMaxObjects int
	runDryRun     bool
	runForce      bool
)

var runCmd = &cobra.Command{
	Use:   "run [object-identity]",
	Short: "Run a single synchronisation cycle",
	Long: `Performs one incremental cycle: lists the storage areas, ingests every
changed document and advances the watermark.

If an object identity ("area/path") is given, only that object is processed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSliceVar(&runAreas, "areas", nil, "restrict to the named storage areas")
	runCmd.Flags().IntVar(&runMaxObjects, "max-objects", 0, "cap changed objects (0 = no cap)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "report what would be processed without ingesting")
	runCmd.Flags().BoolVar(&runForce, "force", false, "reprocess unchanged documents")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	opts := driving.SyncOptions{
		Areas:      runAreas,
		MaxObjects: runMaxObjects,
		DryRun:     runDryRun,
		Force:      runForce,
	}

	if len(args) > 0 {
		identity := args[0]
		cmd.Printf("Processing %s...\n", identity)

		report, err := syncOrchestrator.ProcessObject(cmd.Context(), identity, opts)
		if err != nil {
			return err
		}
		printSyncReport(cmd, report)
		return nil
	}

	cmd.Println("Running synchronisation cycle...")

	report, err := syncOrchestrator.RunOnce(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printSyncReport(cmd, report)
	return nil
}
