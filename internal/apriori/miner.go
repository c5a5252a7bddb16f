package apriori

import (
	"fmt"
	"slices"

	"github.com/rewired-gh/assocmine/internal/logger"
)

// supportEpsilon absorbs rounding in minSupport*total, e.g. 0.3*10 = 3.0000000000000004.
const supportEpsilon = 1e-9

// Miner performs the level-wise frequent itemset search over an ItemIndex.
type Miner struct {
	index *ItemIndex
	opts  options
}

// NewMiner creates a miner over idx.
func NewMiner(idx *ItemIndex, opts ...Option) *Miner {
	return &Miner{index: idx, opts: applyOptions(opts)}
}

// Mine returns every itemset whose support is at least minSupport, ordered
// by size and then lexicographically by item id.
func (m *Miner) Mine(minSupport float64) (*FrequentSet, error) {
	if err := checkFraction("min_support", minSupport); err != nil {
		return nil, err
	}
	total := m.index.Total()
	fs := newFrequentSet(total, minSupport)
	if total == 0 || m.index.Len() == 0 {
		return fs, nil
	}

	frequent := func(count int) bool {
		return float64(count) >= minSupport*float64(total)-supportEpsilon
	}

	level := make([]Itemset, 0, m.index.Len())
	for id := 0; id < m.index.Len(); id++ {
		count := m.index.Frequency(id)
		if !frequent(count) {
			continue
		}
		s, err := m.itemset([]int{id}, count)
		if err != nil {
			return nil, err
		}
		level = append(level, s)
	}
	logger.Debug("Level 1: %d of %d items frequent", len(level), m.index.Len())

	for k := 1; len(level) > 0; k++ {
		for _, s := range level {
			fs.add(s)
		}
		if m.opts.maxLength > 0 && k >= m.opts.maxLength {
			break
		}

		candidates, err := m.candidates(level, fs)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}

		counts := make([]int, len(candidates))
		err = forChunks(len(candidates), m.opts.workers, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				counts[i] = m.index.Count(candidates[i])
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		next := make([]Itemset, 0, len(candidates))
		for i, c := range candidates {
			if !frequent(counts[i]) {
				continue
			}
			s, err := m.itemset(c, counts[i])
			if err != nil {
				return nil, err
			}
			next = append(next, s)
		}
		logger.Debug("Level %d: %d candidates, %d frequent", k+1, len(candidates), len(next))
		level = next
	}

	return fs, nil
}

func (m *Miner) itemset(items []int, count int) (Itemset, error) {
	support, err := Support(count, m.index.Total())
	if err != nil {
		return Itemset{}, err
	}
	return Itemset{Items: items, Count: count, Support: support}, nil
}

// candidates joins frequent k-itemsets sharing a (k-1)-prefix and keeps
// only those whose every k-subset is frequent. level must be sorted.
func (m *Miner) candidates(level []Itemset, fs *FrequentSet) ([][]int, error) {
	k := len(level[0].Items)
	var out [][]int
	for i := 0; i < len(level); i++ {
		a := level[i].Items
		if len(a) != k {
			return nil, invariant("candidate join", fmt.Sprintf("expected size %d", k), a)
		}
		for j := i + 1; j < len(level); j++ {
			b := level[j].Items
			// Sorted order groups equal prefixes, so the first mismatch ends the run.
			if !slices.Equal(a[:k-1], b[:k-1]) {
				break
			}
			if a[k-1] >= b[k-1] {
				return nil, invariant("candidate join", "level is not in canonical order", b)
			}
			cand := make([]int, k+1)
			copy(cand, a)
			cand[k] = b[k-1]
			if m.closed(cand, fs) {
				out = append(out, cand)
			}
		}
	}
	slices.SortFunc(out, compareItems)
	return out, nil
}

// closed reports whether every subset of cand one item smaller is frequent.
// The two subsets obtained by dropping either of the last two items are the
// join parents and are skipped.
func (m *Miner) closed(cand []int, fs *FrequentSet) bool {
	for skip := 0; skip < len(cand)-2; skip++ {
		if !fs.Contains(without(cand, skip)) {
			return false
		}
	}
	return true
}
