package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mindweave-dev/mindweave/pkg/workspace"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored thinking sessions",
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "emit machine-readable output")
}

func runSessions(cmd *cobra.Command, args []string) error {
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

	result, err := w.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if sessionsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Count == 0 {
		fmt.Println("no sessions stored")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tTHOUGHTS\tUPDATED\tDEFAULT")
	for _, s := range result.Sessions {
		marker := ""
		if s.ID == result.DefaultSessionID {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.ID, s.ThoughtCount, s.UpdatedAt.Format("2006-01-02 15:04"), marker)
	}
	return tw.Flush()
}
