// Package store - Flat-file JSON persistence for scan history and accounts.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested scan does not exist for the user.
var ErrNotFound = errors.New("scan not found")

const (
	// maxScansPerUser caps how many history records one user may hold.
	maxScansPerUser = 100
	// timeFormat is the timestamp layout used in scan records and profiles.
	timeFormat = "2006-01-02 15:04:05"
	// imageTimeFormat names saved scan images.
	imageTimeFormat = "20060102150405"
)

// Scan is one saved analysis record.
type Scan struct {
	Username string `json:"username"`
	Date     string `json:"date"`
	// Timestamp repeats Date; both fields are kept for compatibility with
	// existing history files.
	Timestamp string   `json:"timestamp"`
	Mode      string   `json:"mode"`
	Status    string   `json:"status"`
	Ripeness  string   `json:"ripeness"`
	Diseases  []string `json:"diseases"`
	ImagePath string   `json:"image_path"`
	ScanID    string   `json:"scan_id"`
}

// HistoryStore persists scan records in a single JSON array file, newest
// first, with one JPEG per scan in a scans directory.
type HistoryStore struct {
	path     string
	scansDir string
	mu       sync.Mutex
	now      func() time.Time
}

// NewHistoryStore creates a HistoryStore and ensures the scans directory
// exists.
func NewHistoryStore(path, scansDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(scansDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create scans directory")
	}
	return &HistoryStore{path: path, scansDir: scansDir, now: time.Now}, nil
}

// NewScan assembles a record for the given user stamped with the current
// time and a fresh scan ID.
func (s *HistoryStore) NewScan(username, mode, status, ripeness string, diseases []string, imagePath string) Scan {
	now := s.now()
	stamp := now.Format(timeFormat)
	return Scan{
		Username:  username,
		Date:      stamp,
		Timestamp: stamp,
		Mode:      mode,
		Status:    status,
		Ripeness:  ripeness,
		Diseases:  diseases,
		ImagePath: imagePath,
		ScanID:    username + "_" + now.Format(imageTimeFormat) + "_" + uuid.NewString()[:8],
	}
}

// SaveImage writes the scan's source image into the scans directory. The
// bytes are stored exactly as uploaded; the annotated copy only travels in
// the response.
//
// Returns:
//   - string: The saved file path, recorded in the scan.
//   - error: An error if the write fails.
func (s *HistoryStore) SaveImage(username string, data []byte) (string, error) {
	name := username + "_" + s.now().Format(imageTimeFormat) + ".jpg"
	path := filepath.Join(s.scansDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// Append prepends a scan and enforces the per-user cap, deleting the oldest
// excess records together with their image files.
func (s *HistoryStore) Append(scan Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scans := s.load()
	scans = append([]Scan{scan}, scans...)

	var mine, others []Scan
	for _, sc := range scans {
		if sc.Username == scan.Username {
			mine = append(mine, sc)
		} else {
			others = append(others, sc)
		}
	}

	// Records are newest first, so the excess to drop sits at the tail.
	if len(mine) > maxScansPerUser {
		for _, old := range mine[maxScansPerUser:] {
			removeImage(old.ImagePath)
		}
		mine = mine[:maxScansPerUser]
	}

	// The writing user's records are serialized ahead of everyone else's.
	return s.save(append(mine, others...))
}

// List returns the user's scans in stored order, newest first.
func (s *HistoryStore) List(username string) []Scan {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Scan
	for _, sc := range s.load() {
		if sc.Username == username {
			out = append(out, sc)
		}
	}
	return out
}

// Delete removes the user's scan with the given ID and its image file.
// The file is left untouched when no record matches.
func (s *HistoryStore) Delete(username, scanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scans := s.load()
	for i, sc := range scans {
		if sc.Username == username && sc.ScanID == scanID {
			removeImage(sc.ImagePath)
			return s.save(append(scans[:i], scans[i+1:]...))
		}
	}
	return ErrNotFound
}

// load reads the history file. A missing or corrupt file yields an empty
// history rather than an error.
func (s *HistoryStore) load() []Scan {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var scans []Scan
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil
	}
	return scans
}

// save writes the history atomically: temp file in the same directory, then
// rename over the target.
func (s *HistoryStore) save(scans []Scan) error {
	if scans == nil {
		scans = []Scan{}
	}
	data, err := json.MarshalIndent(scans, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode history")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp history file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write history")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp history file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to replace history file")
	}
	return nil
}

// removeImage deletes a scan's image file, ignoring records without one.
func removeImage(path string) {
	if path == "" {
		return
	}
	os.Remove(path)
}
