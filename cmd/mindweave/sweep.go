package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindweave-dev/mindweave/pkg/retention"
	"github.com/mindweave-dev/mindweave/pkg/workspace"
)

var sweepMaxAgeDays int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete sessions older than the retention window",
	Long: `Run one retention sweep and exit. A session is stale when its
record has not been modified within the window; per-session deletion
failures are reported but do not stop the sweep.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepMaxAgeDays, "max-age-days", 0,
		fmt.Sprintf("retention window in days (default %d)", retention.DefaultMaxAgeDays))
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("opening storage backend: %w", err)
	}
	w := workspace.New(backend)
	defer w.Close()

	maxAgeDays := sweepMaxAgeDays
	if maxAgeDays == 0 {
		maxAgeDays = cfg.Retention.MaxAgeDays
	}

	res, err := w.CleanupSessions(cmd.Context(), maxAgeDays)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Printf("deleted %d session(s) older than %d days", res.Deleted, res.MaxAgeDays)
	if res.Failed > 0 {
		fmt.Printf(", %d deletion(s) failed (first: %v)", res.Failed, res.FirstErr)
	}
	fmt.Println()
	return nil
}
