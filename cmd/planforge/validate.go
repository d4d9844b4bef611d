package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/orchestrator"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest.json>",
	Short: "Validate a previously compiled manifest",
	Long: `Validate re-checks a manifest that crossed a trust boundary:
every contract against its schema, and the roadmap against the
contracts it orders, including a full cycle re-check.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	manifest, err := readManifest(args[0])
	if err != nil {
		return err
	}

	if err := orchestrator.ValidateManifest(manifest); err != nil {
		fmt.Printf("%s %s is invalid\n", color.RedString("✗"), args[0])
		return err
	}

	fmt.Printf("%s %s is valid: %d contracts, build order %v\n",
		color.GreenString("✓"), args[0],
		len(manifest.Enhancements), manifest.Roadmap.BuildOrder)
	return nil
}

// readManifest decodes a manifest file, rejecting unknown fields.
func readManifest(path string) (*models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest models.Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &manifest, nil
}
