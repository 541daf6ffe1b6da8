package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docsight/internal/core/ports/driving"
)

var (
	watchInterval   time.Duration
	watchAreas      []string
	watchMaxObjects int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch storage areas and ingest changed documents",
	Long: `Polls the configured storage areas on an interval and ingests every
document whose content changed since the last check. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Minute, "polling interval")
	watchCmd.Flags().StringSliceVar(&watchAreas, "areas", nil, "restrict to the named storage areas")
	watchCmd.Flags().IntVar(&watchMaxObjects, "max-objects", 0, "cap changed objects per cycle (0 = no cap)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	// Configured defaults apply when the flags were not given:
	// sync.interval (seconds) and sync.max_objects.
	if configStore != nil {
		if !cmd.Flags().Changed("interval") {
			if secs := configStore.GetInt(keySyncInterval); secs > 0 {
				watchInterval = time.Duration(secs) * time.Second
			}
		}
		if !cmd.Flags().Changed("max-objects") {
			if n := configStore.GetInt(keySyncMaxObjects); n > 0 {
				watchMaxObjects = n
			}
		}
	}

	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", watchInterval)
	}

	opts := driving.SyncOptions{
		Areas:      watchAreas,
		MaxObjects: watchMaxObjects,
	}

	cmd.Printf("Watching for changes every %s. Press Ctrl+C to stop.\n", watchInterval)

	err := syncOrchestrator.Watch(cmd.Context(), watchInterval, opts)
	if errors.Is(err, context.Canceled) {
		cmd.Println("Watch stopped.")
		return nil
	}
	return err
}
