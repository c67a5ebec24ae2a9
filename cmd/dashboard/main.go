// Command dashboard renders block-production metrics from the indexer's
// PostgreSQL blocks table: a live rolling window or a one-shot historical
// range.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/config"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/env"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envPath  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Block metrics dashboard for the eth-indexer database",
		Long: `Render block-production metrics (timestamp, transaction count, gas used,
block size, TPS, block time) from the blocks table the indexer maintains.

Examples:
  dashboard live
  dashboard live --interval 10s
  dashboard range --start 0 --stop 10000
  dashboard range --start 0 --format json
  dashboard status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.Load(envPath)
			setupLogging(logLevel)
		},
	}

	cmd.PersistentFlags().String("config", "", "Optional YAML config file (values expand ${VAR})")
	cmd.PersistentFlags().StringVar(&envPath, "env", "", "Path to .env file (default ./.env)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug|info|warn|error)")

	cmd.AddCommand(liveCmd())
	cmd.AddCommand(rangeCmd())
	cmd.AddCommand(statusCmd())

	return cmd
}

// loadConfig loads and validates the configuration for a subcommand, and
// applies the configured log level unless a flag already set one.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel == "" {
		setupLogging(cfg.LogLevel)
	}
	return cfg, nil
}

func setupLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if level == "" {
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, keeping current")
		return
	}
	log.SetLevel(parsed)
}
