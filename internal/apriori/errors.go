package apriori

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned for thresholds outside (0, 1] and for
// malformed input such as empty entity keys.
var ErrInvalidParameter = errors.New("invalid parameter")

// DuplicateEntityError reports two transactions sharing an entity key.
type DuplicateEntityError struct {
	Key   string
	First int
	Again int
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate entity %q at input positions %d and %d", e.Key, e.First, e.Again)
}

// InvariantViolationError signals an internal consistency failure. It always
// indicates a bug, never a data condition, and aborts the run.
type InvariantViolationError struct {
	Op     string
	Items  []int
	Detail string
}

func (e *InvariantViolationError) Error() string {
	if len(e.Items) == 0 {
		return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("invariant violation in %s: %s (items %v)", e.Op, e.Detail, e.Items)
}

func invariant(op, detail string, items []int) error {
	return &InvariantViolationError{Op: op, Items: append([]int(nil), items...), Detail: detail}
}

func checkFraction(name string, v float64) error {
	// NaN fails both comparisons below, so test the accepted range positively.
	if !(v > 0 && v <= 1) {
		return fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrInvalidParameter, name, v)
	}
	return nil
}
