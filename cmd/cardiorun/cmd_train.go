package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cardiorun/cardiorun/internal/artifacts"
	"github.com/cardiorun/cardiorun/internal/config"
	"github.com/cardiorun/cardiorun/internal/dataset"
	"github.com/cardiorun/cardiorun/internal/engine"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train candidate models and save the selected bundle",
		Long:  "Fits every candidate classifier on a stratified 80/20 split, selects the best by held-out ROC-AUC, and persists the artifact bundle.",
		RunE:  runTrain,
	}
	cmd.Flags().String("data", "data/heart_attack_prediction_dataset.csv", "Training dataset CSV")
	cmd.Flags().String("artifacts", "artifacts/models", "Artifact bundle directory")
	cmd.Flags().String("config", "", "Optional risk constants YAML override")
	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	artifactsDir, _ := cmd.Flags().GetString("artifacts")

	cfg, err := loadRiskConfig(cmd)
	if err != nil {
		return err
	}

	ds, err := dataset.LoadCSV(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	eng := engine.New(cfg)
	result, err := eng.TrainAndSelect(ds)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	if err := artifacts.Save(artifactsDir, result); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}

	for _, c := range result.Candidates {
		marker := " "
		if c.Name == result.BestName {
			marker = "*"
		}
		fmt.Printf("%s %-20s roc_auc=%.4f accuracy=%.4f f1=%.4f\n",
			marker, c.Name, c.Metrics.ROCAUC, c.Metrics.Accuracy, c.Metrics.F1)
	}
	return nil
}

func loadRiskConfig(cmd *cobra.Command) (config.RiskConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	log.Info().Str("path", path).Msg("risk config loaded")
	return cfg, nil
}
