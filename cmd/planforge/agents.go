package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/registry"
)

var agentsCmd = &cobra.Command{
	Use:   "agents <roster.yaml>",
	Short: "Inspect an agent roster file",
	Long: `Agents loads a roster file the way compile --agents does and
prints the registered workers, so a roster can be checked before it
gates routing decisions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAgents,
}

func runAgents(cmd *cobra.Command, args []string) error {
	reg := registry.New()
	n, err := registry.LoadRoster(reg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s Roster valid: %d agents\n", color.GreenString("✓"), n)
	for _, meta := range reg.All() {
		preferred := ""
		if meta.Preferred {
			preferred = " (preferred, advisory only)"
		}
		fmt.Printf("  %-20s trust=%.2f domains=%v%s\n",
			meta.AgentID, meta.TrustScore, meta.Domains, preferred)
	}
	return nil
}
