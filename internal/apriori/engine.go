package apriori

import (
	"fmt"

	"github.com/rewired-gh/assocmine/internal/models"
)

// Params controls a full mining run.
type Params struct {
	MinSupport    float64
	MinConfidence float64
	MaxLength     int
	Workers       int

	// Appearance constraint by label. Empty LHS/RHS means every item.
	LHS  []string
	RHS  []string
	None []string
}

// Validate checks thresholds before any work is done.
func (p Params) Validate() error {
	if err := checkFraction("min_support", p.MinSupport); err != nil {
		return err
	}
	if err := checkFraction("min_confidence", p.MinConfidence); err != nil {
		return err
	}
	if p.MaxLength < 0 {
		return fmt.Errorf("%w: max_length must not be negative, got %d", ErrInvalidParameter, p.MaxLength)
	}
	return nil
}

func (p Params) constrained() bool {
	return len(p.LHS) > 0 || len(p.RHS) > 0 || len(p.None) > 0
}

// Result bundles everything a run produced.
type Result struct {
	Store    *Store
	Index    *ItemIndex
	Frequent *FrequentSet
	Rules    []Rule
}

// Run builds the index, mines frequent itemsets and generates rules.
func Run(transactions []Transaction, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	store, idx, err := Build(transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	opts := []Option{WithWorkers(p.Workers), WithMaxLength(p.MaxLength)}
	fs, err := NewMiner(idx, opts...).Mine(p.MinSupport)
	if err != nil {
		return nil, fmt.Errorf("failed to mine itemsets: %w", err)
	}

	var constraint *Appearance
	if p.constrained() {
		constraint = NewAppearance(idx, p.LHS, p.RHS, p.None)
	}
	rules, err := NewRuleGenerator(fs, idx, opts...).Generate(p.MinConfidence, constraint)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rules: %w", err)
	}

	return &Result{Store: store, Index: idx, Frequent: fs, Rules: rules}, nil
}

// ItemsetRecords converts mined itemsets to labelled records.
func (r *Result) ItemsetRecords() []models.Itemset {
	out := make([]models.Itemset, len(r.Frequent.Itemsets))
	for i, s := range r.Frequent.Itemsets {
		out[i] = models.Itemset{Items: r.Index.Labels(s.Items), Count: s.Count, Support: s.Support}
	}
	return out
}

// RuleRecords converts rules to labelled records for the reporting layer.
func (r *Result) RuleRecords() []models.Rule {
	out := make([]models.Rule, len(r.Rules))
	for i, rule := range r.Rules {
		out[i] = models.Rule{
			Antecedent: r.Index.Labels(rule.Antecedent),
			Consequent: r.Index.Labels(rule.Consequent),
			Count:      rule.Count,
			Support:    rule.Support,
			Confidence: rule.Confidence,
			Lift:       rule.Lift,
			Coverage:   rule.Coverage,
			Leverage:   rule.Leverage,
		}
	}
	return out
}

// FromModels converts boundary records into engine input.
func FromModels(txs []models.Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = Transaction{Key: tx.Key, Items: tx.Items}
	}
	return out
}
