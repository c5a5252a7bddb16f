package models

import (
	"errors"
	"fmt"
	"time"
)

// Params records the thresholds and constraint a report was mined with.
type Params struct {
	MinSupport    float64  `json:"min_support"`
	MinConfidence float64  `json:"min_confidence"`
	MaxLength     int      `json:"max_length,omitempty"`
	LHS           []string `json:"lhs,omitempty"`
	RHS           []string `json:"rhs,omitempty"`
	None          []string `json:"none,omitempty"`
}

// Report is the output of one mining run as handed to the reporting layer.
type Report struct {
	Version      string    `json:"version"`
	RunID        string    `json:"run_id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source,omitempty"`
	Params       Params    `json:"params"`
	Transactions int       `json:"transactions"`
	Dropped      int       `json:"dropped"`
	Items        int       `json:"items"`
	Itemsets     []Itemset `json:"itemsets"`
	Rules        []Rule    `json:"rules"`
}

// Validate checks that all report fields are valid
func (r *Report) Validate() error {
	if r.RunID == "" {
		return errors.New("report run ID must not be empty")
	}
	if r.Params.MinSupport <= 0.0 || r.Params.MinSupport > 1.0 {
		return errors.New("min support must be in (0, 1]")
	}
	if r.Params.MinConfidence <= 0.0 || r.Params.MinConfidence > 1.0 {
		return errors.New("min confidence must be in (0, 1]")
	}
	if r.Transactions < 0 || r.Dropped < 0 {
		return errors.New("transaction counts must not be negative")
	}
	if r.CreatedAt.After(time.Now()) {
		return errors.New("created at must not be in the future")
	}
	for i := range r.Itemsets {
		if err := r.Itemsets[i].Validate(); err != nil {
			return fmt.Errorf("itemset %d: %w", i, err)
		}
	}
	for i := range r.Rules {
		if err := r.Rules[i].Validate(); err != nil {
			return fmt.Errorf("rule %d (%s): %w", i, r.Rules[i], err)
		}
	}
	return nil
}
