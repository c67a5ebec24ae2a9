package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/render"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/series"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/store"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/window"
)

func liveCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Continuously tail the newest blocks and redraw the dashboard",
		Long: `Tail the newest window of blocks and redraw all six metric series on a
fixed cadence. The window size is derived from PLOT_TIME_WINDOW_MINUTES and
AVERAGE_BLOCK_TIME_SECONDS.

Examples:
  dashboard live
  dashboard live --interval 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to config)")
	return cmd
}

func runLive(cmd *cobra.Command, intervalOverride time.Duration) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Use config default unless explicitly overridden
	interval := cfg.Live.Interval
	if intervalOverride > 0 {
		interval = intervalOverride
	}

	formula, err := series.ParseTPSFormula(cfg.TPSFormula)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle Ctrl+C gracefully
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	capacity := cfg.WindowBlocks()
	ctrl := window.New(st, capacity, formula)
	renderer := newRenderer(cfg.Format, interval)

	log.WithFields(log.Fields{
		"window_blocks": capacity,
		"interval":      interval,
		"tps_formula":   formula,
	}).Info("starting live dashboard")

	refresh := func() {
		frame, err := ctrl.Refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Skip this cycle; the next tick retries naturally.
			log.WithError(err).Warn("refresh failed, awaiting next tick")
			return
		}
		if err := renderer.Render(frame); err != nil {
			log.WithError(err).Warn("render failed")
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Immediate first refresh so the dashboard isn't blank for a full tick.
	refresh()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			refresh()
		}
	}
}

// newRenderer picks the output surface; format is already validated.
func newRenderer(format string, interval time.Duration) render.Renderer {
	if format == "json" {
		render.DisableColors()
		return &render.JSON{Out: os.Stdout}
	}
	return &render.Terminal{Out: os.Stdout, Interval: interval}
}
