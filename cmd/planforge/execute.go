package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/config"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/orchestrator"
)

var executeCmd = &cobra.Command{
	Use:   "execute <manifest.json>",
	Short: "Delegate a validated manifest in build order",
	Long: `Execute replays a manifest's build order, recording the handoff
of each contract in dependency-safe sequence. The manifest is
re-validated first; an invalid manifest is never delegated.`,
	Args: cobra.ExactArgs(1),
	RunE: runExecute,
}

func runExecute(cmd *cobra.Command, args []string) error {
	manifest, err := readManifest(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, auditor, err := openAudit(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	// Delegation needs no generation collaborators, only the audit log.
	coord := orchestrator.New(orchestrator.DefaultConfig(), nil, nil, nil, nil, nil, auditor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	steps, err := coord.ExecuteDelegation(ctx, manifest)
	if err != nil {
		return err
	}

	fmt.Printf("%s Delegated %d contracts\n", color.GreenString("✓"), len(steps))
	for _, step := range steps {
		line := fmt.Sprintf("  %d. %s", step.Position, step.Area)
		if len(step.DependsOn) > 0 {
			line += fmt.Sprintf(" (after %s)", strings.Join(step.DependsOn, ", "))
		}
		fmt.Println(line)
	}
	return nil
}
