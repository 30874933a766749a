package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardiorun/cardiorun/internal/artifacts"
	"github.com/cardiorun/cardiorun/internal/engine"
	"github.com/cardiorun/cardiorun/internal/features"
)

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run one risk assessment from a patient record",
		Long:  "Loads the artifact bundle, assesses the JSON patient record, and prints the full assessment including counterfactual scenarios.",
		RunE:  runAssess,
	}
	cmd.Flags().String("artifacts", "artifacts/models", "Artifact bundle directory")
	cmd.Flags().String("input", "", "Patient record JSON file (named fields)")
	cmd.Flags().String("config", "", "Optional risk constants YAML override")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAssess(cmd *cobra.Command, _ []string) error {
	artifactsDir, _ := cmd.Flags().GetString("artifacts")
	inputPath, _ := cmd.Flags().GetString("input")

	cfg, err := loadRiskConfig(cmd)
	if err != nil {
		return err
	}

	bundle, err := artifacts.Load(artifactsDir)
	if err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	eng := engine.New(cfg)
	eng.Publish(engine.SnapshotFromBundle(bundle))

	assessment, err := eng.Predict(features.FromRecord(rec))
	if err != nil {
		return fmt.Errorf("assess: %w", err)
	}

	out, err := json.MarshalIndent(assessment, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
