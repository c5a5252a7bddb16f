package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rewired-gh/assocmine/internal/apriori"
	"github.com/rewired-gh/assocmine/internal/config"
	"github.com/rewired-gh/assocmine/internal/logger"
	"github.com/rewired-gh/assocmine/internal/models"
	"github.com/rewired-gh/assocmine/internal/rank"
	"github.com/rewired-gh/assocmine/internal/source"
	"github.com/rewired-gh/assocmine/internal/storage"
)

// buildReport loads the configured table, mines it and returns the report.
func buildReport(ctx context.Context, cfg *config.Config) (*models.Report, error) {
	startTime := time.Now()
	location := cfg.Source.Location()

	client := source.NewClient(cfg.Source.Timeout, source.ClientConfig{
		MaxRetries:     cfg.Source.MaxRetries,
		RetryDelayBase: cfg.Source.RetryDelayBase,
	})
	data, err := source.Load(ctx, client, location)
	if err != nil {
		return nil, err
	}

	table, err := source.ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	txs, err := source.Transactions(table, source.Options{
		EntityColumn: cfg.Source.EntityColumn,
		Columns:      cfg.Source.Columns,
		Discretize:   cfg.Discretize.Columns,
		Labels:       cfg.Discretize.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build transactions: %w", err)
	}

	params := apriori.Params{
		MinSupport:    cfg.Mining.MinSupport,
		MinConfidence: cfg.Mining.MinConfidence,
		MaxLength:     cfg.Mining.MaxLength,
		Workers:       cfg.Mining.Workers,
		LHS:           cfg.Constraint.LHS,
		RHS:           cfg.Constraint.RHS,
		None:          cfg.Constraint.None,
	}
	result, err := apriori.Run(apriori.FromModels(txs), params)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		Version:   storage.FormatVersion,
		RunID:     storage.NewRunID(),
		CreatedAt: time.Now(),
		Source:    location,
		Params: models.Params{
			MinSupport:    params.MinSupport,
			MinConfidence: params.MinConfidence,
			MaxLength:     params.MaxLength,
			LHS:           params.LHS,
			RHS:           params.RHS,
			None:          params.None,
		},
		Transactions: result.Index.Total(),
		Dropped:      len(result.Store.Dropped()),
		Items:        result.Index.Len(),
		Itemsets:     result.ItemsetRecords(),
		Rules:        result.RuleRecords(),
	}

	logger.Info("Mined %d itemsets and %d rules from %d transactions in %v",
		len(report.Itemsets), len(report.Rules), report.Transactions, time.Since(startTime))
	return report, nil
}

// archive adds report to the archive at the configured path and persists it.
func archive(cfg *config.Config, report *models.Report) error {
	store := openStorage(cfg)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}
	if err := store.AddReport(report); err != nil {
		return err
	}
	if removed := store.Rotate(); removed > 0 {
		logger.Debug("Rotated %d old reports out of the archive", removed)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	logger.Info("Saved report %s to %s", report.RunID, store.Path())
	return nil
}

// lookup returns the report with runID, or the latest one when runID is empty.
func lookup(cfg *config.Config, runID string) (*models.Report, error) {
	store := openStorage(cfg)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}
	if runID == "" {
		return store.Latest()
	}
	return store.GetReport(runID)
}

func openStorage(cfg *config.Config) *storage.Storage {
	return storage.New(cfg.Storage.MaxReports, cfg.Storage.FilePath, cfg.Storage.FileMode(), cfg.Storage.DirMode())
}

func rankOptions(cfg *config.Config) rank.Options {
	return rank.Options{
		SortBy:  cfg.Report.SortBy,
		Filter:  cfg.Report.Filter,
		Side:    cfg.Report.Side,
		MinLift: cfg.Report.MinLift,
		TopK:    cfg.Report.TopK,
	}
}
