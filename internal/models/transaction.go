// Package models defines the records exchanged between the mining engine and
// the layers around it: transactions coming out of discretization, and the
// itemsets and rules handed to ranking, rendering and export.
//
// Terminology:
//   - Entity: the thing a transaction describes (e.g. a county, keyed by FIPS code).
//   - Item: a categorical label such as "poverty_rate=Q4".
//
// All models include built-in validation so bad records are rejected at the boundary.
package models

import (
	"errors"
	"fmt"
)

// Transaction is the set of items observed for one entity.
type Transaction struct {
	Key   string   `json:"key"`
	Items []string `json:"items"`
}

// Validate checks that the transaction has a key and no blank labels.
// An empty item list is allowed here; the engine drops such transactions.
func (t *Transaction) Validate() error {
	if t.Key == "" {
		return errors.New("transaction key must not be empty")
	}
	for i, item := range t.Items {
		if item == "" {
			return fmt.Errorf("transaction %s: item %d must not be empty", t.Key, i)
		}
	}
	return nil
}
