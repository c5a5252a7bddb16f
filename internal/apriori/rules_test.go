package apriori

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelledRule struct {
	lhs, rhs []string
}

func labelRules(idx *ItemIndex, rules []Rule) []labelledRule {
	out := make([]labelledRule, len(rules))
	for i, r := range rules {
		out[i] = labelledRule{lhs: idx.Labels(r.Antecedent), rhs: idx.Labels(r.Consequent)}
	}
	return out
}

func TestGenerate_Scenario(t *testing.T) {
	fs, idx := mineSample(t, 0.5)

	rules, err := NewRuleGenerator(fs, idx).Generate(0.6, nil)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, []labelledRule{
		{lhs: []string{"b"}, rhs: []string{"a"}},
		{lhs: []string{"a"}, rhs: []string{"b"}},
	}, labelRules(idx, rules))

	for _, r := range rules {
		assert.Equal(t, 2, r.Count)
		assert.Equal(t, 0.5, r.Support)
		assert.InDelta(t, 0.5/0.75, r.Confidence, 1e-12)
		assert.InDelta(t, (0.5/0.75)/0.75, r.Lift, 1e-12)
		assert.InDelta(t, 0.889, r.Lift, 1e-3)
		assert.Equal(t, 0.75, r.Coverage)
	}
}

func TestGenerate_ConsequentConstraint(t *testing.T) {
	fs, idx := mineSample(t, 0.5)

	rules, err := NewRuleGenerator(fs, idx).Generate(0.6, NewAppearance(idx, nil, []string{"b"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []labelledRule{{lhs: []string{"a"}, rhs: []string{"b"}}}, labelRules(idx, rules))
}

func TestGenerate_ConstraintExcludesEverything(t *testing.T) {
	fs, idx := mineSample(t, 0.5)

	tests := []struct {
		name       string
		constraint *Appearance
	}{
		{"none excludes both", NewAppearance(idx, nil, nil, []string{"a", "b"})},
		{"lhs restricted to unknown label", NewAppearance(idx, []string{"zzz"}, nil, nil)},
		{"rhs restricted to absent item", NewAppearance(idx, nil, []string{"c"}, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := NewRuleGenerator(fs, idx).Generate(0.1, tt.constraint)
			require.NoError(t, err)
			assert.Empty(t, rules)
		})
	}
}

func TestGenerate_SingletonsProduceNoRules(t *testing.T) {
	_, idx, err := Build([]Transaction{
		{Key: "1", Items: []string{"x"}},
		{Key: "2", Items: []string{"y"}},
	})
	require.NoError(t, err)
	fs, err := NewMiner(idx).Mine(0.5)
	require.NoError(t, err)
	require.Equal(t, 2, fs.Len())

	rules, err := NewRuleGenerator(fs, idx).Generate(0.1, nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestGenerate_InvalidConfidence(t *testing.T) {
	fs, idx := mineSample(t, 0.5)
	for _, v := range []float64{0, 1.2, -1, math.NaN()} {
		_, err := NewRuleGenerator(fs, idx).Generate(v, nil)
		assert.ErrorIs(t, err, ErrInvalidParameter, "min_confidence %v", v)
	}
}

func TestGenerate_MissingAntecedentIsInvariantViolation(t *testing.T) {
	_, idx, err := Build(sampleTransactions())
	require.NoError(t, err)

	// A hand-built set that breaks downward closure: {a,b} without {b}.
	fs := newFrequentSet(idx.Total(), 0.5)
	fs.add(Itemset{Items: []int{0}, Count: 3, Support: 0.75})
	fs.add(Itemset{Items: []int{0, 1}, Count: 2, Support: 0.5})

	_, err = NewRuleGenerator(fs, idx).Generate(0.1, nil)
	var inv *InvariantViolationError
	require.True(t, errors.As(err, &inv), "got %v", err)
	assert.Equal(t, []int{1}, inv.Items)
}

func TestGenerate_SingletonsOnly(t *testing.T) {
	_, idx, err := Build(sampleTransactions())
	require.NoError(t, err)

	fs, err := NewMiner(idx, WithMaxLength(1)).Mine(0.25)
	require.NoError(t, err)
	require.Equal(t, fs.Len(), len(fs.Level(1)))

	rules, err := NewRuleGenerator(fs, idx, WithWorkers(4)).Generate(0.1, nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

// bruteRules enumerates every split of every frequent itemset without any
// pruning, as the reference for the level-wise generator.
func bruteRules(t *testing.T, fs *FrequentSet, idx *ItemIndex, minConfidence float64, a *Appearance) map[string]bool {
	t.Helper()
	out := make(map[string]bool)
	for _, f := range fs.Itemsets {
		n := len(f.Items)
		if n < 2 {
			continue
		}
		for mask := 1; mask < (1<<n)-1; mask++ {
			var lhs, rhs []int
			for i, id := range f.Items {
				if mask&(1<<i) != 0 {
					lhs = append(lhs, id)
				} else {
					rhs = append(rhs, id)
				}
			}
			conf := float64(f.Count) / float64(idx.Count(lhs))
			if conf < minConfidence-confidenceEpsilon || !a.AllowsAntecedent(lhs) || !a.AllowsConsequent(rhs) {
				continue
			}
			out[itemKey(lhs)+"=>"+itemKey(rhs)] = true
		}
	}
	return out
}

func TestGenerate_MatchesExhaustiveEnumeration(t *testing.T) {
	store, idx, err := Build(randomTransactions(42, 300, 9))
	require.NoError(t, err)
	fs, err := NewMiner(idx).Mine(0.04)
	require.NoError(t, err)

	constraints := map[string]*Appearance{
		"unconstrained":     nil,
		"rhs restricted":    NewAppearance(idx, nil, []string{"v0=Q1"}, nil),
		"item excluded":     NewAppearance(idx, nil, nil, []string{"v3=Q1"}),
		"lhs restricted":    NewAppearance(idx, []string{"v3=Q1", "v6=Q1"}, nil, nil),
		"both sides narrow": NewAppearance(idx, []string{"v0=Q1", "v3=Q1"}, []string{"v6=Q1", "v1=Q1"}, []string{"v0=Q2"}),
	}

	for name, constraint := range constraints {
		t.Run(name, func(t *testing.T) {
			for _, minConfidence := range []float64{0.2, 0.5, 0.8} {
				rules, err := NewRuleGenerator(fs, idx).Generate(minConfidence, constraint)
				require.NoError(t, err)

				got := make(map[string]bool, len(rules))
				for _, r := range rules {
					got[itemKey(r.Antecedent)+"=>"+itemKey(r.Consequent)] = true

					union := append(append([]int(nil), r.Antecedent...), r.Consequent...)
					assert.Empty(t, difference(r.Antecedent, difference(r.Antecedent, r.Consequent)), "sides overlap")
					assert.Equal(t, bruteCount(store, union), r.Count)
					want := float64(bruteCount(store, union)) / float64(bruteCount(store, r.Antecedent))
					assert.InDelta(t, want, r.Confidence, 1e-12)
					consSupport := float64(bruteCount(store, r.Consequent)) / float64(store.Len())
					assert.InDelta(t, r.Confidence/consSupport, r.Lift, 1e-9)
				}
				assert.Equal(t, bruteRules(t, fs, idx, minConfidence, constraint), got, "min_confidence %v", minConfidence)
			}
		})
	}
}

func TestGenerate_Monotonic(t *testing.T) {
	_, idx, err := Build(randomTransactions(8, 250, 8))
	require.NoError(t, err)
	fs, err := NewMiner(idx).Mine(0.05)
	require.NoError(t, err)

	prev, err := NewRuleGenerator(fs, idx).Generate(0.1, nil)
	require.NoError(t, err)
	for _, minConfidence := range []float64{0.3, 0.5, 0.7, 0.9} {
		next, err := NewRuleGenerator(fs, idx).Generate(minConfidence, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(next), len(prev))
		prev = next
	}
}

func TestGenerate_ParallelMatchesSerial(t *testing.T) {
	_, idx, err := Build(randomTransactions(99, 400, 10))
	require.NoError(t, err)
	fs, err := NewMiner(idx).Mine(0.03)
	require.NoError(t, err)

	serial, err := NewRuleGenerator(fs, idx).Generate(0.3, nil)
	require.NoError(t, err)
	parallel, err := NewRuleGenerator(fs, idx, WithWorkers(6)).Generate(0.3, nil)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestJoinConsequents(t *testing.T) {
	assert.Nil(t, joinConsequents([][]int{{1}}))
	assert.Equal(t, [][]int{{1, 2}, {1, 3}, {2, 3}}, joinConsequents([][]int{{1}, {2}, {3}}))
	// {2,3} missing, so {1,2,3} is not generated.
	assert.Empty(t, joinConsequents([][]int{{1, 2}, {1, 3}}))
	assert.Equal(t, [][]int{{1, 2, 3}}, joinConsequents([][]int{{1, 2}, {1, 3}, {2, 3}}))
}
