package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/config"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/intake"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/orchestrator"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/registry"
)

var (
	compileOut    string
	compileRoster string
	compileBatch  string
	compileQuiet  bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <batch.yaml>",
	Short: "Compile a batch of enhancement areas into a manifest",
	Long: `Compile runs the full pipeline over a batch document:
classification, policy routing, contract generation, duplicate
checking, and dependency ordering.

The batch document is YAML:

  areas:
    - name: auth-service
      objective: Add OAuth2 login
      key_requirements:
        - Support Google and GitHub providers
      depends_on: [user-store]

A cycle among accepted contracts fails the whole batch; no partial
manifest is ever written.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "manifest.json", "Manifest output path")
	compileCmd.Flags().StringVar(&compileRoster, "agents", "", "Agent roster YAML to register before routing")
	compileCmd.Flags().StringVar(&compileBatch, "batch-id", "", "Batch identifier (default: generated)")
	compileCmd.Flags().BoolVarP(&compileQuiet, "quiet", "q", false, "Suppress per-area progress output")
}

func runCompile(cmd *cobra.Command, args []string) error {
	areas, err := intake.ReadFile(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer pipe.close()

	if compileRoster != "" {
		n, err := registry.LoadRoster(pipe.registry, compileRoster)
		if err != nil {
			return err
		}
		if !compileQuiet {
			fmt.Printf("Registered %d agents from %s\n", n, compileRoster)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Drain progress events for the life of the process; the channel
	// has no producer once CompileManifest returns.
	go func() {
		for ev := range pipe.coordinator.Events() {
			if !compileQuiet {
				printEvent(ev)
			}
		}
	}()

	manifest, err := pipe.coordinator.CompileManifest(ctx, compileBatch, areas)
	stop()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(compileOut, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	fmt.Printf("\n%s Manifest written to %s\n", color.GreenString("✓"), compileOut)
	fmt.Printf("  batch:    %s\n", manifest.Meta.BatchID)
	fmt.Printf("  accepted: %d of %d areas\n", manifest.Meta.AcceptedCount, manifest.Meta.AreaCount)
	fmt.Printf("  order:    %v\n", manifest.Roadmap.BuildOrder)
	return nil
}

// printEvent renders one pipeline event as a progress line.
func printEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventAreaClassified:
		fmt.Printf("  %s %s: domain %s\n", color.CyanString("→"), ev.Area, ev.Message)
	case orchestrator.EventPolicyEvaluated:
		fmt.Printf("  %s %s: route %s\n", color.CyanString("→"), ev.Area, ev.Route)
	case orchestrator.EventAreaEscalated:
		fmt.Printf("  %s %s escalated: %s\n", color.YellowString("⚠"), ev.Area, ev.Message)
	case orchestrator.EventAreaAccepted:
		fmt.Printf("  %s %s accepted\n", color.GreenString("✓"), ev.Area)
	case orchestrator.EventAreaRejected:
		fmt.Printf("  %s %s rejected: %v\n", color.RedString("✗"), ev.Area, ev.Error)
	case orchestrator.EventBatchFailed:
		fmt.Printf("%s batch failed: %v\n", color.RedString("✗"), ev.Error)
	}
}
