package models

import (
	"errors"
	"math"
	"strings"
)

// confidenceTolerance bounds the drift allowed between Confidence and Support/Coverage.
const confidenceTolerance = 1e-9

// Itemset is a frequent itemset expressed with item labels.
type Itemset struct {
	Items   []string `json:"items"`
	Count   int      `json:"count"`
	Support float64  `json:"support"`
}

// Validate checks that all itemset fields are valid
func (s *Itemset) Validate() error {
	if len(s.Items) == 0 {
		return errors.New("itemset must contain at least one item")
	}
	if s.Count < 1 {
		return errors.New("itemset count must be positive")
	}
	if s.Support <= 0.0 || s.Support > 1.0 {
		return errors.New("itemset support must be in (0, 1]")
	}
	return nil
}

// Rule is an association rule Antecedent => Consequent.
//
// Support is the support of the union, Coverage the support of the antecedent.
type Rule struct {
	Antecedent []string `json:"antecedent"`
	Consequent []string `json:"consequent"`
	Count      int      `json:"count"`
	Support    float64  `json:"support"`
	Confidence float64  `json:"confidence"`
	Lift       float64  `json:"lift"`
	Coverage   float64  `json:"coverage"`
	Leverage   float64  `json:"leverage"`
}

// Validate checks that all rule fields are valid
func (r *Rule) Validate() error {
	if len(r.Antecedent) == 0 {
		return errors.New("rule antecedent must not be empty")
	}
	if len(r.Consequent) == 0 {
		return errors.New("rule consequent must not be empty")
	}
	seen := make(map[string]bool, len(r.Antecedent))
	for _, item := range r.Antecedent {
		seen[item] = true
	}
	for _, item := range r.Consequent {
		if seen[item] {
			return errors.New("rule antecedent and consequent must be disjoint")
		}
	}
	if r.Count < 1 {
		return errors.New("rule count must be positive")
	}
	if r.Support <= 0.0 || r.Support > 1.0 {
		return errors.New("rule support must be in (0, 1]")
	}
	if r.Confidence <= 0.0 || r.Confidence > 1.0 {
		return errors.New("rule confidence must be in (0, 1]")
	}
	if r.Coverage < r.Support || r.Coverage > 1.0 {
		return errors.New("rule coverage must be in [support, 1]")
	}
	if math.Abs(r.Confidence-r.Support/r.Coverage) > confidenceTolerance {
		return errors.New("rule confidence must equal support / coverage")
	}
	if r.Lift <= 0.0 || math.IsInf(r.Lift, 0) || math.IsNaN(r.Lift) {
		return errors.New("rule lift must be positive and finite")
	}
	return nil
}

// String renders the rule as "{a, b} => {c}".
func (r Rule) String() string {
	return "{" + strings.Join(r.Antecedent, ", ") + "} => {" + strings.Join(r.Consequent, ", ") + "}"
}

// Mentions reports whether any label on the given side contains substr.
// Side is "lhs", "rhs" or anything else for both.
func (r Rule) Mentions(substr, side string) bool {
	check := func(items []string) bool {
		for _, item := range items {
			if strings.Contains(item, substr) {
				return true
			}
		}
		return false
	}
	switch side {
	case "lhs":
		return check(r.Antecedent)
	case "rhs":
		return check(r.Consequent)
	default:
		return check(r.Antecedent) || check(r.Consequent)
	}
}
