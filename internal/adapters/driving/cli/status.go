package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show synchronisation status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	status, err := syncOrchestrator.Status(cmd.Context())
	if err != nil {
		return err
	}

	if status.Running {
		cmd.Println("Synchronisation: running")
	} else {
		cmd.Println("Synchronisation: idle")
	}
	if status.LastCheckTime.IsZero() {
		cmd.Println("Last check: never")
	} else {
		cmd.Printf("Last check: %s\n", status.LastCheckTime.Format("2006-01-02 15:04:05 MST"))
	}
	cmd.Printf("Known objects: %d\n", status.KnownObjects)
	return nil
}
