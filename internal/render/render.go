// Package render prints mined rules and itemsets as terminal tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rewired-gh/assocmine/internal/models"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#2C4A54")
)

// Printer writes styled output to w. Colors are dropped automatically when
// w is not a terminal.
type Printer struct {
	w      io.Writer
	title  lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

// New creates a Printer bound to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(colorAccent),
		muted:  r.NewStyle().Foreground(colorMuted),
		header: r.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		border: r.NewStyle().Foreground(colorBorder),
	}
}

func (p *Printer) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			if col > 1 {
				return p.cell.Align(lipgloss.Right)
			}
			return p.cell
		})
}

// Summary prints the run header of a report.
func (p *Printer) Summary(r *models.Report) error {
	var b strings.Builder
	b.WriteString(p.title.Render("Association rules"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", p.muted.Render("run:"), r.RunID)
	if r.Source != "" {
		fmt.Fprintf(&b, "%s %s\n", p.muted.Render("source:"), r.Source)
	}
	fmt.Fprintf(&b, "%s %d (%d dropped), %d items\n", p.muted.Render("transactions:"), r.Transactions, r.Dropped, r.Items)
	fmt.Fprintf(&b, "%s support >= %s, confidence >= %s",
		p.muted.Render("thresholds:"), formatFloat(r.Params.MinSupport), formatFloat(r.Params.MinConfidence))
	if r.Params.MaxLength > 0 {
		fmt.Fprintf(&b, ", length <= %d", r.Params.MaxLength)
	}
	b.WriteString("\n")
	if c := constraint(r.Params); c != "" {
		fmt.Fprintf(&b, "%s %s\n", p.muted.Render("constraint:"), c)
	}
	fmt.Fprintf(&b, "%s %d itemsets, %d rules\n", p.muted.Render("found:"), len(r.Itemsets), len(r.Rules))
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Rules prints rules as a table, one row per rule in the given order.
func (p *Printer) Rules(rules []models.Rule) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(p.w, p.muted.Render("no rules"))
		return err
	}
	t := p.table("#", "rule", "support", "confidence", "lift", "leverage", "count")
	for i, r := range rules {
		t.Row(
			strconv.Itoa(i+1),
			r.String(),
			formatFloat(r.Support),
			formatFloat(r.Confidence),
			formatFloat(r.Lift),
			formatFloat(r.Leverage),
			strconv.Itoa(r.Count),
		)
	}
	_, err := fmt.Fprintln(p.w, t.String())
	return err
}

// Itemsets prints frequent itemsets. When k > 0 only itemsets of that size
// are printed.
func (p *Printer) Itemsets(itemsets []models.Itemset, k int) error {
	t := p.table("#", "itemset", "support", "count")
	n := 0
	for _, s := range itemsets {
		if k > 0 && len(s.Items) != k {
			continue
		}
		n++
		t.Row(
			strconv.Itoa(n),
			"{"+strings.Join(s.Items, ", ")+"}",
			formatFloat(s.Support),
			strconv.Itoa(s.Count),
		)
	}
	if n == 0 {
		_, err := fmt.Fprintln(p.w, p.muted.Render("no itemsets"))
		return err
	}
	_, err := fmt.Fprintln(p.w, t.String())
	return err
}

func constraint(params models.Params) string {
	var parts []string
	if len(params.LHS) > 0 {
		parts = append(parts, "lhs in ["+strings.Join(params.LHS, ", ")+"]")
	}
	if len(params.RHS) > 0 {
		parts = append(parts, "rhs in ["+strings.Join(params.RHS, ", ")+"]")
	}
	if len(params.None) > 0 {
		parts = append(parts, "none of ["+strings.Join(params.None, ", ")+"]")
	}
	return strings.Join(parts, "; ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
