package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/assocmine/internal/rank"
	"github.com/rewired-gh/assocmine/internal/render"
)

var (
	reportTopK    int
	reportSortBy  string
	reportFilter  string
	reportSide    string
	reportMinLift float64

	runID        string
	itemsetsSize int

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the rules of an archived report",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}

	itemsetsCmd = &cobra.Command{
		Use:   "itemsets",
		Short: "Print the frequent itemsets of an archived report",
		Args:  cobra.NoArgs,
		RunE:  runItemsets,
	}

	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List archived reports, newest first",
		Args:  cobra.NoArgs,
		RunE:  runRuns,
	}
)

func init() {
	addReportFlags(showCmd)
	showCmd.Flags().StringVar(&runID, "run", "", "run ID to show (default: latest)")

	itemsetsCmd.Flags().StringVar(&runID, "run", "", "run ID to show (default: latest)")
	itemsetsCmd.Flags().IntVarP(&itemsetsSize, "size", "k", 0, "only itemsets of this size")
}

// addReportFlags registers the ranking overrides shared by mine and show.
func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&reportTopK, "top-k", 0, "number of rules to print, 0 for all (overrides report.top_k)")
	f.StringVar(&reportSortBy, "sort-by", "", "lift, confidence, support or count (overrides report.sort_by)")
	f.StringVar(&reportFilter, "filter", "", "only rules mentioning this label substring")
	f.StringVar(&reportSide, "side", "", "side the filter applies to: any, lhs or rhs")
	f.Float64Var(&reportMinLift, "min-lift", 0, "only rules with at least this lift")
}

func applyReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("top-k") {
		cfg.Report.TopK = reportTopK
	}
	if f.Changed("sort-by") {
		cfg.Report.SortBy = reportSortBy
	}
	if f.Changed("filter") {
		cfg.Report.Filter = reportFilter
	}
	if f.Changed("side") {
		cfg.Report.Side = reportSide
	}
	if f.Changed("min-lift") {
		cfg.Report.MinLift = reportMinLift
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	applyReportFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	report, err := lookup(cfg, runID)
	if err != nil {
		return err
	}
	ranked, err := rank.Rank(report.Rules, rankOptions(cfg))
	if err != nil {
		return err
	}

	p := render.New(cmd.OutOrStdout())
	if err := p.Summary(report); err != nil {
		return err
	}
	return p.Rules(ranked)
}

func runItemsets(cmd *cobra.Command, args []string) error {
	report, err := lookup(cfg, runID)
	if err != nil {
		return err
	}
	return render.New(cmd.OutOrStdout()).Itemsets(report.Itemsets, itemsetsSize)
}

func runRuns(cmd *cobra.Command, args []string) error {
	store := openStorage(cfg)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, r := range store.List() {
		if _, err := fmt.Fprintf(out, "%s  %s  %d transactions  %d rules  %s\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Transactions, len(r.Rules), r.Source); err != nil {
			return err
		}
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
