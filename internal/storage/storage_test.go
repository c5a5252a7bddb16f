package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/assocmine/internal/models"
)

func newReport(runID string, createdAt time.Time) *models.Report {
	return &models.Report{
		RunID:        runID,
		CreatedAt:    createdAt,
		Source:       "test.csv",
		Params:       models.Params{MinSupport: 0.5, MinConfidence: 0.5},
		Transactions: 4,
		Items:        2,
		Itemsets: []models.Itemset{
			{Items: []string{"a"}, Count: 4, Support: 1},
			{Items: []string{"b"}, Count: 2, Support: 0.5},
			{Items: []string{"a", "b"}, Count: 2, Support: 0.5},
		},
		Rules: []models.Rule{
			{Antecedent: []string{"b"}, Consequent: []string{"a"}, Count: 2, Support: 0.5, Confidence: 1, Lift: 1, Coverage: 0.5, Leverage: 0},
		},
	}
}

func TestStorage_AddAndGetReport(t *testing.T) {
	s := New(10, filepath.Join(t.TempDir(), "reports.json"), 0o644, 0o755)

	report := newReport("", time.Time{})
	if err := s.AddReport(report); err != nil {
		t.Fatalf("AddReport failed: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if report.Version != FormatVersion {
		t.Errorf("expected version %s, got %s", FormatVersion, report.Version)
	}

	got, err := s.GetReport(report.RunID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got != report {
		t.Error("expected the stored report back")
	}

	if _, err := s.GetReport("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_AddReportInvalid(t *testing.T) {
	s := New(10, "", 0o644, 0o755)

	report := newReport("r1", time.Now())
	report.Params.MinSupport = 0
	if err := s.AddReport(report); err == nil {
		t.Fatal("expected error for invalid report")
	}
	if len(s.List()) != 0 {
		t.Error("invalid report must not be stored")
	}
}

func TestStorage_LatestAndRotate(t *testing.T) {
	s := New(2, "", 0o644, 0o755)

	if _, err := s.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty archive, got %v", err)
	}

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.AddReport(newReport(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("AddReport(%s) failed: %v", id, err)
		}
	}

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.RunID != "new" {
		t.Errorf("expected latest run new, got %s", latest.RunID)
	}

	if removed := s.Rotate(); removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := s.GetReport("old"); err == nil {
		t.Error("expected oldest report to be rotated out")
	}
	if n := len(s.List()); n != 2 {
		t.Errorf("expected 2 reports, got %d", n)
	}
}

func TestStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports.json")

	s := New(10, path, 0o644, 0o755)
	if err := s.AddReport(newReport("r1", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("AddReport failed: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after save")
	}

	restored := New(10, path, 0o644, 0o755)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := restored.GetReport("r1")
	if err != nil {
		t.Fatalf("GetReport after load failed: %v", err)
	}
	if len(got.Rules) != 1 || got.Rules[0].String() != "{b} => {a}" {
		t.Errorf("unexpected rules after load: %v", got.Rules)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("restored report is invalid: %v", err)
	}
}

func TestStorage_LoadMissingFile(t *testing.T) {
	s := New(10, filepath.Join(t.TempDir(), "absent.json"), 0o644, 0o755)
	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file should succeed, got %v", err)
	}
	if len(s.List()) != 0 {
		t.Error("expected empty archive")
	}
}

func TestStorage_LoadRemovesStaleTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	if err := os.WriteFile(path+".tmp", []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(10, path, 0o644, 0o755)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("stale temp file should be removed")
	}
}

func TestStorage_LoadRejectsCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"wrong version", `{"version":"9.9","reports":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reports.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := New(10, path, 0o644, 0o755).Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
