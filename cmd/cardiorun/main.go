package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "cardiorun"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// Optional .env bootstrap; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg(".env loaded")
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Cardiovascular risk assessment engine",
		Version: version,
		Long: `cardiorun trains a set of classifiers on a heart-disease dataset, selects the
best by held-out ROC-AUC, and serves composed cardiovascular risk assessments
with explanations and lifestyle counterfactuals.`,
	}

	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newAssessCmd())
	rootCmd.AddCommand(newServeOpsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
