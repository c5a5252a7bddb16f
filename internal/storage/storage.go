// Package storage keeps an archive of mining reports with file-based
// persistence.
//
// Reports are held in memory keyed by run ID and written to a single JSON
// file with an atomic tmp+rename write. The archive is rotated so that only
// the most recent reports are kept.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/assocmine/internal/models"
)

// FormatVersion is written to every archive file and report.
const FormatVersion = "1.0"

// ErrNotFound is returned when a run ID is not in the archive.
var ErrNotFound = errors.New("report not found")

// Storage is a thread-safe report archive.
type Storage struct {
	reports map[string]*models.Report
	mu      sync.RWMutex

	maxReports      int
	filePath        string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// PersistenceFile represents the file structure for JSON persistence
type PersistenceFile struct {
	Version string                    `json:"version"`
	SavedAt time.Time                 `json:"saved_at"`
	Reports map[string]*models.Report `json:"reports"`
}

// New creates a Storage persisting to filePath. If filePath is empty, an
// OS-appropriate tmp directory is used.
func New(maxReports int, filePath string, filePermissions, dirPermissions os.FileMode) *Storage {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "assocmine", "reports.json")
	}
	if maxReports <= 0 {
		maxReports = 1
	}

	return &Storage{
		reports:         make(map[string]*models.Report),
		maxReports:      maxReports,
		filePath:        filePath,
		filePermissions: filePermissions,
		dirPermissions:  dirPermissions,
	}
}

// Path returns the archive file location.
func (s *Storage) Path() string {
	return s.filePath
}

// NewRunID returns a fresh identifier for a mining run.
func NewRunID() string {
	return uuid.NewString()
}

// AddReport validates and stores a report. A missing run ID, version or
// creation time is filled in.
func (s *Storage) AddReport(report *models.Report) error {
	if report.RunID == "" {
		report.RunID = NewRunID()
	}
	if report.Version == "" {
		report.Version = FormatVersion
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.RunID] = report
	return nil
}

// GetReport retrieves a report by run ID
func (s *Storage) GetReport(runID string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[runID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return report, nil
}

// List returns all reports, newest first.
func (s *Storage) List() []*models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*models.Report, 0, len(s.reports))
	for _, report := range s.reports {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].RunID < reports[j].RunID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports
}

// Latest returns the most recent report.
func (s *Storage) Latest() (*models.Report, error) {
	reports := s.List()
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: archive %s is empty", ErrNotFound, s.filePath)
	}
	return reports[0], nil
}

// Save persists storage state to file
func (s *Storage) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, s.dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := PersistenceFile{
		Version: FormatVersion,
		SavedAt: time.Now(),
		Reports: s.reports,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, s.filePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Load restores storage state from file. A missing file leaves the archive
// empty.
func (s *Storage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clean up any stale temp files from previous crashes
	tempPath := s.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	jsonData, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data PersistenceFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	if data.Version != FormatVersion {
		return fmt.Errorf("unsupported archive version %q", data.Version)
	}

	s.reports = data.Reports
	if s.reports == nil {
		s.reports = make(map[string]*models.Report)
	}
	return nil
}

// Rotate removes the oldest reports beyond the configured limit and returns
// how many were removed.
func (s *Storage) Rotate() int {
	reports := s.List()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, report := range reports[min(s.maxReports, len(reports)):] {
		delete(s.reports, report.RunID)
		removed++
	}
	return removed
}
