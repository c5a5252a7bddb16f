package apriori

import (
	"slices"

	"github.com/rewired-gh/assocmine/internal/logger"
)

// confidenceEpsilon absorbs rounding when comparing against minConfidence.
const confidenceEpsilon = 1e-12

// Rule is an association rule between two disjoint itemsets whose union
// was mined as frequent.
type Rule struct {
	Antecedent []int
	Consequent []int
	Count      int
	Support    float64
	Confidence float64
	Lift       float64
	Coverage   float64
	Leverage   float64
}

// RuleGenerator derives rules from a FrequentSet.
type RuleGenerator struct {
	frequent *FrequentSet
	index    *ItemIndex
	opts     options
}

// NewRuleGenerator creates a generator over a mining result and the index it came from.
func NewRuleGenerator(fs *FrequentSet, idx *ItemIndex, opts ...Option) *RuleGenerator {
	return &RuleGenerator{frequent: fs, index: idx, opts: applyOptions(opts)}
}

// Generate returns every rule with confidence at least minConfidence whose
// sides satisfy constraint. Rules follow the order of the frequent itemsets
// they come from, then consequent size, then consequent ids.
func (g *RuleGenerator) Generate(minConfidence float64, constraint *Appearance) ([]Rule, error) {
	if err := checkFraction("min_confidence", minConfidence); err != nil {
		return nil, err
	}

	// Singletons sort first and yield no rules.
	itemsets := g.frequent.Itemsets[len(g.frequent.Level(1)):]
	perItemset := make([][]Rule, len(itemsets))
	err := forChunks(len(itemsets), g.opts.workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			rules, err := g.fromItemset(itemsets[i], minConfidence, constraint)
			if err != nil {
				return err
			}
			perItemset[i] = rules
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []Rule
	for _, rules := range perItemset {
		out = append(out, rules...)
	}
	logger.Debug("Generated %d rules from %d itemsets of size >= 2 (min_confidence=%.3f)", len(out), len(itemsets), minConfidence)
	return out, nil
}

// fromItemset grows consequents level by level. For a fixed itemset, a
// consequent that fails the confidence threshold or the consequent-side
// constraint fails it for every superset too, so only survivors are joined.
// The antecedent-side constraint only gates emission.
func (g *RuleGenerator) fromItemset(f Itemset, minConfidence float64, constraint *Appearance) ([]Rule, error) {
	var out []Rule

	level := make([][]int, 0, len(f.Items))
	for _, id := range f.Items {
		level = append(level, []int{id})
	}

	for m := 1; m < len(f.Items) && len(level) > 0; m++ {
		survivors := make([][]int, 0, len(level))
		for _, consequent := range level {
			rule, err := g.evaluate(f, consequent)
			if err != nil {
				return nil, err
			}
			if rule.Confidence < minConfidence-confidenceEpsilon || !constraint.AllowsConsequent(consequent) {
				continue
			}
			survivors = append(survivors, consequent)
			if constraint.AllowsAntecedent(rule.Antecedent) {
				out = append(out, rule)
			}
		}
		level = joinConsequents(survivors)
	}
	return out, nil
}

// evaluate computes the metrics of (F \ consequent) => consequent.
func (g *RuleGenerator) evaluate(f Itemset, consequent []int) (Rule, error) {
	antecedent := difference(f.Items, consequent)
	if len(antecedent) == 0 || len(antecedent)+len(consequent) != len(f.Items) {
		return Rule{}, invariant("rule split", "consequent is not a proper subset of its itemset", f.Items)
	}

	antecedentCount, ok := g.frequent.Lookup(antecedent)
	if !ok {
		return Rule{}, invariant("rule split", "antecedent missing from frequent set", antecedent)
	}
	consequentCount, ok := g.frequent.Lookup(consequent)
	if !ok {
		consequentCount = g.index.Count(consequent)
	}

	total := g.index.Total()
	coverage, err := Support(antecedentCount, total)
	if err != nil {
		return Rule{}, err
	}
	consequentSupport, err := Support(consequentCount, total)
	if err != nil {
		return Rule{}, err
	}
	confidence, err := Confidence(f.Count, antecedentCount)
	if err != nil {
		return Rule{}, err
	}
	lift, err := Lift(confidence, consequentSupport)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Antecedent: antecedent,
		Consequent: consequent,
		Count:      f.Count,
		Support:    f.Support,
		Confidence: confidence,
		Lift:       lift,
		Coverage:   coverage,
		Leverage:   Leverage(f.Support, coverage, consequentSupport),
	}, nil
}

// joinConsequents builds size m+1 consequents from sorted size m survivors,
// keeping a candidate only when all of its size m subsets survived.
func joinConsequents(level [][]int) [][]int {
	if len(level) < 2 {
		return nil
	}
	m := len(level[0])
	present := make(map[string]bool, len(level))
	for _, c := range level {
		present[itemKey(c)] = true
	}

	var out [][]int
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i], level[j]
			if !slices.Equal(a[:m-1], b[:m-1]) {
				break
			}
			cand := make([]int, m+1)
			copy(cand, a)
			cand[m] = b[m-1]

			ok := true
			for skip := 0; skip < m-1 && ok; skip++ {
				ok = present[itemKey(without(cand, skip))]
			}
			if ok {
				out = append(out, cand)
			}
		}
	}
	slices.SortFunc(out, compareItems)
	return out
}
