package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cardiorun/cardiorun/internal/artifacts"
	"github.com/cardiorun/cardiorun/internal/engine"
	"github.com/cardiorun/cardiorun/internal/ops"
)

func newServeOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-ops",
		Short: "Serve the ops endpoints (health, metrics)",
		RunE:  runServeOps,
	}
	cmd.Flags().String("addr", ":9090", "Listen address")
	cmd.Flags().String("artifacts", "artifacts/models", "Artifact bundle directory")
	cmd.Flags().String("config", "", "Optional risk constants YAML override")
	return cmd
}

func runServeOps(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	artifactsDir, _ := cmd.Flags().GetString("artifacts")

	cfg, err := loadRiskConfig(cmd)
	if err != nil {
		return err
	}

	eng := engine.New(cfg)
	// A missing bundle is not fatal for the ops server; /health reports the
	// engine as not ready until a bundle appears and the process restarts.
	if bundle, err := artifacts.Load(artifactsDir); err != nil {
		log.Warn().Err(err).Msg("no artifact bundle loaded, serving unhealthy")
	} else {
		eng.Publish(engine.SnapshotFromBundle(bundle))
	}

	srv := ops.NewServer(addr, func() ops.Status {
		snap := eng.Snapshot()
		s := ops.Status{Status: "ok", ModelLoaded: snap != nil}
		if snap != nil {
			s.ModelName = snap.ModelName
		} else {
			s.Status = "degraded"
		}
		return s
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("ops server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Msg("ops server stopped")
	}
	return nil
}
