// Package apriori mines frequent itemsets and association rules from
// categorical transactions.
//
// A run builds a Store and an ItemIndex once from the input, mines frequent
// itemsets level by level with a Miner, and derives rules with a
// RuleGenerator:
//
//	store, idx, err := apriori.Build(transactions)
//	fs, err := apriori.NewMiner(idx).Mine(0.1)
//	rules, err := apriori.NewRuleGenerator(fs, idx).Generate(0.8, nil)
//
// Support counting intersects per-item posting lists instead of scanning
// transactions. The index is read-only after Build and safe to share
// between goroutines; nothing is kept between runs.
package apriori

import (
	"fmt"
	"slices"

	"github.com/rewired-gh/assocmine/internal/logger"
)

// Transaction is one input record: an entity key and its item labels.
type Transaction struct {
	Key   string
	Items []string
}

// StoredTransaction is a validated transaction with its items as sorted ids.
type StoredTransaction struct {
	Key   string
	Items []int
}

// Store holds the validated transactions of a run.
type Store struct {
	transactions []StoredTransaction
	dropped      []string
}

// Len returns the number of transactions that carry at least one item.
func (s *Store) Len() int { return len(s.transactions) }

// at returns the i-th stored transaction.
func (s *Store) at(i int) StoredTransaction { return s.transactions[i] }

// Dropped returns the keys of transactions discarded for having no items.
func (s *Store) Dropped() []string { return s.dropped }

// ItemIndex maps item labels to dense ids and keeps, per id, the sorted
// list of transaction positions containing the item.
type ItemIndex struct {
	labels   []string
	ids      map[string]int
	postings []posting
	total    int
}

// Total returns the number of transactions the index was built from.
func (x *ItemIndex) Total() int { return x.total }

// Len returns the number of distinct items.
func (x *ItemIndex) Len() int { return len(x.labels) }

// Label returns the label for an item id.
func (x *ItemIndex) Label(id int) string { return x.labels[id] }

// Labels maps ids to labels.
func (x *ItemIndex) Labels(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = x.labels[id]
	}
	return out
}

// ID looks up the id of a label.
func (x *ItemIndex) ID(label string) (int, bool) {
	id, ok := x.ids[label]
	return id, ok
}

// Frequency returns the number of transactions containing the item.
func (x *ItemIndex) Frequency(id int) int { return len(x.postings[id]) }

// Count returns the number of transactions containing every item in items
// by intersecting their posting lists, smallest first.
func (x *ItemIndex) Count(items []int) int {
	switch len(items) {
	case 0:
		return x.total
	case 1:
		return len(x.postings[items[0]])
	}
	lists := make([]posting, len(items))
	for i, id := range items {
		lists[i] = x.postings[id]
	}
	slices.SortFunc(lists, func(a, b posting) int { return len(a) - len(b) })

	acc := lists[0]
	for _, next := range lists[1:] {
		if len(acc) == 0 {
			return 0
		}
		acc = intersect(acc, next)
	}
	return len(acc)
}

// Build validates the input and constructs the transaction store and item index.
// Keys must be non-empty and unique; labels must be non-empty. Transactions
// without items are dropped with a warning.
func Build(input []Transaction) (*Store, *ItemIndex, error) {
	store := &Store{transactions: make([]StoredTransaction, 0, len(input))}
	idx := &ItemIndex{ids: make(map[string]int)}
	seen := make(map[string]int, len(input))

	for pos, tx := range input {
		if tx.Key == "" {
			return nil, nil, fmt.Errorf("%w: transaction at position %d has an empty entity key", ErrInvalidParameter, pos)
		}
		if first, dup := seen[tx.Key]; dup {
			return nil, nil, &DuplicateEntityError{Key: tx.Key, First: first, Again: pos}
		}
		seen[tx.Key] = pos

		items := make([]int, 0, len(tx.Items))
		for _, label := range tx.Items {
			if label == "" {
				return nil, nil, fmt.Errorf("%w: transaction %q has an empty item label", ErrInvalidParameter, tx.Key)
			}
			id, ok := idx.ids[label]
			if !ok {
				id = len(idx.labels)
				idx.ids[label] = id
				idx.labels = append(idx.labels, label)
				idx.postings = append(idx.postings, nil)
			}
			items = append(items, id)
		}
		slices.Sort(items)
		items = slices.Compact(items)

		if len(items) == 0 {
			logger.Warn("Dropping transaction %s: no items", tx.Key)
			store.dropped = append(store.dropped, tx.Key)
			continue
		}

		tid := len(store.transactions)
		for _, id := range items {
			// tids are appended in increasing order, so postings stay sorted.
			idx.postings[id] = append(idx.postings[id], tid)
		}
		store.transactions = append(store.transactions, StoredTransaction{Key: tx.Key, Items: items})
	}

	idx.total = len(store.transactions)
	logger.Debug("Built index: %d transactions, %d items, %d dropped", idx.total, len(idx.labels), len(store.dropped))
	return store, idx, nil
}
