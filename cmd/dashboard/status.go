package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/store"
)

func statusCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check store connectivity and block freshness",
		Long: `Ping the database and report the newest block with its age. Useful to
verify the indexer is keeping up before starting a live dashboard.

Examples:
  dashboard status
  dashboard status --timeout 5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Overall check timeout")
	return cmd
}

func runStatus(cmd *cobra.Command, timeout time.Duration) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		fmt.Printf("Store:  %s  %v\n", color.RedString("DOWN"), err)
		return err
	}
	defer st.Close()

	// Connectivity and freshness are independent checks; run them together.
	var newest store.BlockRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return st.Ping(gctx)
	})
	g.Go(func() error {
		rows, err := st.LatestBlocks(gctx, 1)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return store.ErrNoBlocks
		}
		newest = rows[0]
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("Store:  %s  %v\n", color.RedString("DOWN"), err)
		return err
	}

	age := time.Since(time.Unix(newest.Timestamp, 0))

	// Stale when the newest block is older than ten average block times.
	verdict := color.GreenString("OK")
	if age > time.Duration(cfg.Live.BlockSeconds*10)*time.Second {
		verdict = color.YellowString("STALE")
	}

	fmt.Printf("Store:  %s\n", verdict)
	fmt.Printf("Block:  %d (%d txs, %.1f KB)\n", newest.Number, newest.TxCount, float64(newest.SizeBytes)/1024)
	fmt.Printf("Age:    %s\n", age.Truncate(time.Second))
	return nil
}
