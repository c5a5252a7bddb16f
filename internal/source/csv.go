package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rewired-gh/assocmine/internal/discretize"
	"github.com/rewired-gh/assocmine/internal/logger"
	"github.com/rewired-gh/assocmine/internal/models"
)

// missing holds cell values treated as absent.
var missing = map[string]bool{"": true, "na": true, "n/a": true, "nan": true, ".": true, "null": true}

// Table is a parsed CSV with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseCSV parses CSV bytes. The first row is the header; rows shorter than
// the header are padded with empty cells.
func ParseCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	t := &Table{Header: header}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		if len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}
		if extra := nonEmpty(row[len(header):]); extra > 0 {
			logger.Warn("CSV line %d has %d cells beyond the %d header columns; ignoring them", line, extra, len(header))
		}
		t.Rows = append(t.Rows, row[:len(header)])
	}
	return t, nil
}

// column returns the position of name in the header.
func (t *Table) column(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in header %v", name, t.Header)
}

// numeric reports whether every present cell of column i parses as a float
// and at least one is present.
func (t *Table) numeric(i int) bool {
	present := 0
	for _, row := range t.Rows {
		cell := strings.TrimSpace(row[i])
		if missing[strings.ToLower(cell)] {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
		present++
	}
	return present > 0
}

// floats parses column i, with NaN for missing cells. Cells that are present
// but not numeric are logged and treated as missing.
func (t *Table) floats(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		cell := strings.TrimSpace(row[i])
		if missing[strings.ToLower(cell)] {
			out[r] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			logger.Warn("CSV line %d column %s: %q is not numeric; no item produced", r+2, t.Header[i], cell)
			v = math.NaN()
		}
		out[r] = v
	}
	return out
}

func nonEmpty(cells []string) int {
	n := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// Options selects how a table becomes transactions.
type Options struct {
	// EntityColumn holds the entity key. Defaults to the first column.
	EntityColumn string
	// Columns to turn into items. Defaults to every other column.
	Columns []string
	// Discretize lists columns to bin into quartiles. When empty, every
	// selected column whose values are all numeric is binned.
	Discretize []string
	// Labels are the four quartile labels; nil means Q1..Q4.
	Labels []string
}

// Transactions converts a table into one transaction per row. Numeric
// columns become quartile items and the rest become "column=value" items.
// Missing cells produce no item.
func Transactions(t *Table, opts Options) ([]models.Transaction, error) {
	if len(t.Header) == 0 {
		return nil, errors.New("table has no columns")
	}
	entity := 0
	if opts.EntityColumn != "" {
		var err error
		if entity, err = t.column(opts.EntityColumn); err != nil {
			return nil, err
		}
	}

	var selected []int
	if len(opts.Columns) == 0 {
		for i := range t.Header {
			if i != entity {
				selected = append(selected, i)
			}
		}
	} else {
		for _, name := range opts.Columns {
			i, err := t.column(name)
			if err != nil {
				return nil, err
			}
			if i == entity {
				return nil, fmt.Errorf("column %q is the entity column", name)
			}
			selected = append(selected, i)
		}
	}

	binned := make(map[int]bool)
	if len(opts.Discretize) == 0 {
		for _, i := range selected {
			binned[i] = t.numeric(i)
		}
	} else {
		for _, name := range opts.Discretize {
			i, err := t.column(name)
			if err != nil {
				return nil, err
			}
			binned[i] = true
		}
	}

	d, err := discretize.New(opts.Labels)
	if err != nil {
		return nil, err
	}

	labels := make(map[int][]string, len(selected))
	for _, i := range selected {
		if !binned[i] {
			continue
		}
		col, _, err := d.Column(t.Header[i], t.floats(i))
		if err != nil {
			return nil, err
		}
		labels[i] = col
	}

	out := make([]models.Transaction, 0, len(t.Rows))
	for r, row := range t.Rows {
		tx := models.Transaction{Key: strings.TrimSpace(row[entity])}
		for _, i := range selected {
			if col, ok := labels[i]; ok {
				if col[r] != "" {
					tx.Items = append(tx.Items, col[r])
				}
				continue
			}
			cell := strings.TrimSpace(row[i])
			if missing[strings.ToLower(cell)] {
				continue
			}
			tx.Items = append(tx.Items, t.Header[i]+"="+cell)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", r+2, err)
		}
		out = append(out, tx)
	}

	logger.Info("Loaded %d transactions from %d columns (%d discretized)", len(out), len(selected), len(labels))
	return out, nil
}
