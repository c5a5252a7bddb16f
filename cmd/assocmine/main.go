package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/assocmine/internal/config"
	"github.com/rewired-gh/assocmine/internal/logger"
)

var (
	configPath string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:   "assocmine",
		Short: "Mine frequent itemsets and association rules from tabular data",
		Long: `assocmine turns a CSV table into one transaction per row, mines
frequent itemsets with Apriori and reports the association rules that
pass the support and confidence thresholds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.Init(cfg.Logging.Level, cfg.Logging.Format)
			if configPath != "" {
				logger.Debug("Configuration loaded from %s", configPath)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(itemsetsCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Fatal("%v", err)
	}
}
