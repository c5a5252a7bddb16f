// Package discretize converts continuous columns into quartile labels so each
// entity can be described by categorical items such as "poverty_rate=Q4".
//
// Cut points are sample quantiles computed by linear interpolation between
// order statistics (the "type 7" definition used by R and NumPy). Bins are
// right-closed, with the lowest bin also closed on the left:
//
//	[min, q25], (q25, q50], (q50, q75], (q75, max]
//
// Missing values (NaN) get no label.
package discretize

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rewired-gh/assocmine/internal/logger"
)

// DefaultLabels are used when no custom labels are configured.
var DefaultLabels = []string{"Q1", "Q2", "Q3", "Q4"}

// ErrNoValues is returned when a column has no finite values to bin.
var ErrNoValues = errors.New("column has no finite values")

// Cuts holds the 25th, 50th and 75th percentiles of a column.
type Cuts [3]float64

// Quantile returns the p-th sample quantile of sorted using linear
// interpolation. sorted must be non-empty and ascending.
func Quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Quartiles computes the cut points of values, ignoring NaN and ±Inf.
func Quartiles(values []float64) (Cuts, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Cuts{}, ErrNoValues
	}
	slices.Sort(finite)
	return Cuts{
		Quantile(finite, 0.25),
		Quantile(finite, 0.50),
		Quantile(finite, 0.75),
	}, nil
}

// Bin returns the quartile (1-4) that v falls into, or 0 for NaN.
// With tied cut points a value goes to the lowest matching bin.
func (c Cuts) Bin(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	for i, cut := range c {
		if v <= cut {
			return i + 1
		}
	}
	return 4
}

// Discretizer labels values as "<column>=<label>".
type Discretizer struct {
	labels [4]string
}

// New creates a Discretizer. labels must hold exactly four distinct,
// non-empty entries; an empty list selects DefaultLabels.
func New(labels []string) (*Discretizer, error) {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	if len(labels) != 4 {
		return nil, fmt.Errorf("expected 4 quartile labels, got %d", len(labels))
	}
	d := &Discretizer{}
	seen := make(map[string]bool, 4)
	for i, l := range labels {
		if l == "" {
			return nil, fmt.Errorf("quartile label %d must not be empty", i+1)
		}
		if seen[l] {
			return nil, fmt.Errorf("duplicate quartile label %q", l)
		}
		seen[l] = true
		d.labels[i] = l
	}
	return d, nil
}

// Label formats the item for a column and bin (1-4).
func (d *Discretizer) Label(column string, bin int) string {
	return column + "=" + d.labels[bin-1]
}

// Column bins every value of a column and returns one label per row, with
// "" where the value is missing.
func (d *Discretizer) Column(name string, values []float64) ([]string, Cuts, error) {
	cuts, err := Quartiles(values)
	if err != nil {
		return nil, Cuts{}, fmt.Errorf("column %s: %w", name, err)
	}
	if cuts[0] == cuts[1] || cuts[1] == cuts[2] {
		logger.Warn("Column %s has tied quartile cut points %v; some bins will be empty", name, cuts)
	}
	logger.Debug("Column %s cut points: %.4g / %.4g / %.4g", name, cuts[0], cuts[1], cuts[2])

	out := make([]string, len(values))
	for i, v := range values {
		if bin := cuts.Bin(v); bin > 0 && !math.IsInf(v, 0) {
			out[i] = d.Label(name, bin)
		}
	}
	return out, cuts, nil
}
