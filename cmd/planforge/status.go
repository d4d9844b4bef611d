package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/audit"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/config"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

var (
	statusCorrelation string
	statusLimit       int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent audit trail entries",
	Long: `Status reads the persistent audit trail.

With --correlation it shows the full pipeline history of one area or
batch; otherwise it shows the most recent entries.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusCorrelation, "correlation", "", "Show entries for one correlation id")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "Maximum entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path := cfg.Audit.Path
	if path == "" {
		path = audit.DefaultStorePath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No audit trail yet. Run 'planforge compile <batch.yaml>' first.")
		return nil
	}

	store, err := audit.OpenStore(path)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer store.Close()

	var entries []models.AuditEntry
	if statusCorrelation != "" {
		entries, err = store.ListByCorrelation(statusCorrelation)
	} else {
		entries, err = store.ListRecent(statusLimit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No matching audit entries.")
		return nil
	}

	for _, e := range entries {
		area := e.Metadata["area"]
		if area != "" {
			area = " area=" + area
		}
		fmt.Printf("%s  %-12s %-24s corr=%s%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Actor, e.Action, shortID(e.CorrelationID), area)
	}
	return nil
}

// shortID truncates a correlation id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
