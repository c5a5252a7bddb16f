package main

import (
	"github.com/spf13/cobra"

	"github.com/rewired-gh/assocmine/internal/logger"
	"github.com/rewired-gh/assocmine/internal/rank"
	"github.com/rewired-gh/assocmine/internal/render"
	"github.com/rewired-gh/assocmine/internal/telegram"
)

var (
	mineSource        string
	mineMinSupport    float64
	mineMinConfidence float64
	mineMaxLength     int
	mineWorkers       int
	mineNoSave        bool

	mineCmd = &cobra.Command{
		Use:   "mine",
		Short: "Mine a table and print the top rules",
		Args:  cobra.NoArgs,
		RunE:  runMine,
	}
)

func init() {
	f := mineCmd.Flags()
	f.StringVar(&mineSource, "source", "", "CSV file path or http(s) URL (overrides source.path/url)")
	f.Float64Var(&mineMinSupport, "min-support", 0, "minimum itemset support (overrides mining.min_support)")
	f.Float64Var(&mineMinConfidence, "min-confidence", 0, "minimum rule confidence (overrides mining.min_confidence)")
	f.IntVar(&mineMaxLength, "max-length", 0, "maximum itemset length, 0 for unlimited")
	f.IntVar(&mineWorkers, "workers", 0, "parallel workers for counting and rule generation")
	f.BoolVar(&mineNoSave, "no-save", false, "do not add the report to the archive")
	addReportFlags(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	if f.Changed("source") {
		cfg.Source.Path, cfg.Source.URL = "", ""
		if isURL(mineSource) {
			cfg.Source.URL = mineSource
		} else {
			cfg.Source.Path = mineSource
		}
	}
	if f.Changed("min-support") {
		cfg.Mining.MinSupport = mineMinSupport
	}
	if f.Changed("min-confidence") {
		cfg.Mining.MinConfidence = mineMinConfidence
	}
	if f.Changed("max-length") {
		cfg.Mining.MaxLength = mineMaxLength
	}
	if f.Changed("workers") {
		cfg.Mining.Workers = mineWorkers
	}
	applyReportFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateSource(); err != nil {
		return err
	}

	ctx := cmd.Context()
	report, err := buildReport(ctx, cfg)
	if err != nil {
		return err
	}

	if !mineNoSave {
		if err := archive(cfg, report); err != nil {
			return err
		}
	}

	ranked, err := rank.Rank(report.Rules, rankOptions(cfg))
	if err != nil {
		return err
	}

	p := render.New(cmd.OutOrStdout())
	if err := p.Summary(report); err != nil {
		return err
	}
	if err := p.Rules(ranked); err != nil {
		return err
	}

	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("Failed to initialize Telegram client: %v", err)
			return nil
		}
		if err := client.Send(ctx, report, ranked); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		}
	} else {
		logger.Debug("Telegram notifications disabled")
	}
	return nil
}
