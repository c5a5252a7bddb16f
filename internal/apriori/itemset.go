package apriori

import (
	"slices"
	"strconv"
)

// Itemset is a canonically sorted set of item ids with its support.
type Itemset struct {
	Items   []int
	Count   int
	Support float64
}

// Len returns the number of items.
func (s Itemset) Len() int { return len(s.Items) }

// compareItems orders by length, then lexicographically by id.
func compareItems(a, b []int) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return slices.Compare(a, b)
}

// itemKey encodes sorted ids as a map key.
func itemKey(items []int) string {
	buf := make([]byte, 0, len(items)*4)
	for i, id := range items {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	return string(buf)
}

// without returns items minus the element at position skip.
func without(items []int, skip int) []int {
	out := make([]int, 0, len(items)-1)
	out = append(out, items[:skip]...)
	return append(out, items[skip+1:]...)
}

// difference returns the elements of sorted set a that are not in sorted set b.
func difference(a, b []int) []int {
	out := make([]int, 0, len(a))
	j := 0
	for _, v := range a {
		for j < len(b) && b[j] < v {
			j++
		}
		if j < len(b) && b[j] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

// FrequentSet is the output of a mining pass: every frequent itemset in
// canonical order plus a support-count cache keyed by itemset.
type FrequentSet struct {
	Itemsets   []Itemset
	Total      int
	MinSupport float64
	counts     map[string]int
}

func newFrequentSet(total int, minSupport float64) *FrequentSet {
	return &FrequentSet{Total: total, MinSupport: minSupport, counts: make(map[string]int)}
}

func (fs *FrequentSet) add(s Itemset) {
	fs.Itemsets = append(fs.Itemsets, s)
	fs.counts[itemKey(s.Items)] = s.Count
}

// Lookup returns the cached support count of a frequent itemset.
func (fs *FrequentSet) Lookup(items []int) (int, bool) {
	c, ok := fs.counts[itemKey(items)]
	return c, ok
}

// Contains reports whether items was mined as frequent.
func (fs *FrequentSet) Contains(items []int) bool {
	_, ok := fs.counts[itemKey(items)]
	return ok
}

// Len returns the number of frequent itemsets.
func (fs *FrequentSet) Len() int { return len(fs.Itemsets) }

// Level returns the frequent itemsets of size k.
func (fs *FrequentSet) Level(k int) []Itemset {
	start, _ := slices.BinarySearchFunc(fs.Itemsets, k, func(s Itemset, k int) int { return len(s.Items) - k })
	end := start
	for end < len(fs.Itemsets) && len(fs.Itemsets[end].Items) == k {
		end++
	}
	return fs.Itemsets[start:end]
}
