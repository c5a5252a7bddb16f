package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/assocmine/internal/config"
)

const smokersCSV = `id,smoker,risk
1,yes,high
2,yes,high
3,yes,high
4,no,low
5,no,low
6,no,high
7,no,low
8,yes,high
`

func writeTable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smokers.csv")
	require.NoError(t, os.WriteFile(path, []byte(smokersCSV), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load("")
	require.NoError(t, err)
	c.Source.Path = writeTable(t)
	c.Mining.MinSupport = 0.25
	c.Mining.MinConfidence = 0.9
	c.Storage.FilePath = filepath.Join(t.TempDir(), "archive", "reports.json")
	require.NoError(t, c.Validate())
	return c
}

func TestBuildReport(t *testing.T) {
	c := testConfig(t)

	report, err := buildReport(context.Background(), c)
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	assert.Equal(t, 8, report.Transactions)
	assert.Equal(t, 0, report.Dropped)
	assert.Equal(t, 4, report.Items)
	assert.Len(t, report.Itemsets, 6)

	var rules []string
	for _, r := range report.Rules {
		rules = append(rules, r.String())
	}
	assert.ElementsMatch(t, []string{
		"{smoker=yes} => {risk=high}",
		"{risk=low} => {smoker=no}",
	}, rules)
}

func TestBuildReport_RHSConstraint(t *testing.T) {
	c := testConfig(t)
	c.Constraint.RHS = []string{"risk=high", "risk=low"}
	c.Mining.MinConfidence = 0.7

	report, err := buildReport(context.Background(), c)
	require.NoError(t, err)
	require.NotEmpty(t, report.Rules)
	for _, r := range report.Rules {
		assert.True(t, r.Mentions("risk=", "rhs"), r.String())
		assert.False(t, r.Mentions("risk=", "lhs"), r.String())
	}
	assert.Equal(t, []string{"risk=high", "risk=low"}, report.Params.RHS)
}

func TestArchiveAndLookup(t *testing.T) {
	c := testConfig(t)

	report, err := buildReport(context.Background(), c)
	require.NoError(t, err)
	require.NoError(t, archive(c, report))

	got, err := lookup(c, "")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
	assert.Len(t, got.Rules, len(report.Rules))

	got, err = lookup(c, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)

	_, err = lookup(c, "no-such-run")
	assert.Error(t, err)
}

func TestRootCommand_MineThenShow(t *testing.T) {
	table := writeTable(t)
	t.Setenv("ASSOCMINE_STORAGE_FILE_PATH", filepath.Join(t.TempDir(), "reports.json"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"mine", "--source", table, "--min-support", "0.25", "--min-confidence", "0.9"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "{smoker=yes} => {risk=high}")
	assert.Contains(t, out.String(), "6 itemsets, 2 rules")

	out.Reset()
	rootCmd.SetArgs([]string{"show", "--filter", "smoker", "--side", "lhs"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "{smoker=yes} => {risk=high}")
	assert.NotContains(t, out.String(), "{risk=low} => {smoker=no}")

	out.Reset()
	rootCmd.SetArgs([]string{"itemsets", "-k", "2"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "{smoker=yes, risk=high}")

	out.Reset()
	rootCmd.SetArgs([]string{"runs"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "8 transactions  2 rules")
}
