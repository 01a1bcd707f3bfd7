package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Woonters/kartoffels-for-pr/internal/config"
	"github.com/Woonters/kartoffels-for-pr/internal/store"
	"github.com/Woonters/kartoffels-for-pr/internal/telemetry"
	"github.com/Woonters/kartoffels-for-pr/internal/world"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Args:  cobra.NoArgs,
	Short: "boot the world registry and resume persisted worlds",
	Long:  `serve loads configuration, resumes every "*.world" file in the data directory as a public world, and runs until SIGINT/SIGTERM, saving and shutting down every resident world cleanly.`,
	RunE:  runServe,
}

var serveDataDir string

func init() {
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "override store.data_dir from the config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveDataDir != "" {
		cfg.Store.DataDir = serveDataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("data_dir", cfg.Store.DataDir).Msg("kartoffelsd starting")

	st := store.New(cfg.Store.DataDir, log)
	if err := st.Boot(); err != nil {
		return fmt.Errorf("boot store: %w", err)
	}

	registry := prometheus.NewRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchWorlds(ctx, st, registry, log)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, draining worlds")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Store.SaveInterval*4)
	defer cancel()

	if err := st.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("kartoffelsd stopped")
	return nil
}

// watchWorlds registers one telemetry.Collector per world currently
// resident in st and starts a goroutine per world feeding its snapshot
// and event streams into that collector's gauges/counters, until ctx is
// done. Worlds created after boot (there is no listener in this core to
// create them) are out of scope for this command.
func watchWorlds(ctx context.Context, st *store.Store, registry *prometheus.Registry, log zerolog.Logger) {
	for worldID, h := range st.Handles() {
		collector := telemetry.NewCollector(worldID.String())
		collector.MustRegister(registry)
		go watchWorld(ctx, h, collector, log.With().Stringer("world", worldID).Logger())
	}
}

func watchWorld(ctx context.Context, h *world.Handle, c *telemetry.Collector, log zerolog.Logger) {
	unsubSnap, snaps := h.Snapshots()
	defer unsubSnap()

	unsubEvents, events := h.Events()
	defer unsubEvents()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-snaps:
			if !ok {
				return
			}
			snap := item.Value
			c.SetCounts(snap.Alive.Len(), snap.Queued.Len(), snap.Dead.Len())
		case item, ok := <-events:
			if !ok {
				return
			}
			if _, isKill := item.Value.(world.BotKilled); isKill {
				c.RecordKills(1)
			}
		}
	}
}
