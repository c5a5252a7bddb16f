// Package rank orders and filters mined rules for presentation.
//
// Rules can be sorted by lift, confidence, support or raw count, filtered by
// a label substring on either side and by a minimum lift, and cut to the top
// K. Ties keep the engine's deterministic order, so the same input always
// ranks the same way.
package rank

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rewired-gh/assocmine/internal/logger"
	"github.com/rewired-gh/assocmine/internal/models"
)

// Metric names accepted by Options.SortBy.
const (
	ByLift       = "lift"
	ByConfidence = "confidence"
	BySupport    = "support"
	ByCount      = "count"
)

// Side names accepted by Options.Side.
const (
	SideAny = "any"
	SideLHS = "lhs"
	SideRHS = "rhs"
)

// Options controls Rank.
type Options struct {
	SortBy  string
	Filter  string
	Side    string
	MinLift float64
	TopK    int // 0 keeps everything
}

// ValidMetric reports whether name is a supported sort key.
func ValidMetric(name string) bool {
	switch name {
	case ByLift, ByConfidence, BySupport, ByCount:
		return true
	}
	return false
}

func metric(r models.Rule, name string) float64 {
	switch name {
	case ByConfidence:
		return r.Confidence
	case BySupport:
		return r.Support
	case ByCount:
		return float64(r.Count)
	default:
		return r.Lift
	}
}

// Rank filters rules and returns them sorted by the chosen metric,
// descending. The input slice is not modified.
func Rank(rules []models.Rule, opts Options) ([]models.Rule, error) {
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = ByLift
	}
	if !ValidMetric(sortBy) {
		return nil, fmt.Errorf("unknown sort metric %q", opts.SortBy)
	}

	out := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		if opts.Filter != "" && !r.Mentions(opts.Filter, opts.Side) {
			continue
		}
		if opts.MinLift > 0 && r.Lift < opts.MinLift {
			continue
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b models.Rule) int {
		ma, mb := metric(a, sortBy), metric(b, sortBy)
		switch {
		case ma > mb:
			return -1
		case ma < mb:
			return 1
		}
		return 0
	})

	logger.Debug("Ranked %d of %d rules by %s (filter=%q)", len(out), len(rules), sortBy, opts.Filter)
	if opts.TopK > 0 && opts.TopK < len(out) {
		out = out[:opts.TopK]
	}
	return out, nil
}

// Group collects the rules sharing a consequent.
type Group struct {
	Consequent string
	Rules      []models.Rule
	BestLift   float64
}

// GroupByConsequent groups rules by their joined consequent labels,
// preserving first-seen order of groups and of rules within a group.
func GroupByConsequent(rules []models.Rule) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, r := range rules {
		key := strings.Join(r.Consequent, ", ")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Consequent: key})
		}
		g := &groups[i]
		g.Rules = append(g.Rules, r)
		if r.Lift > g.BestLift {
			g.BestLift = r.Lift
		}
	}
	return groups
}
