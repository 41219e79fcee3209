package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrPathRequired = errors.New("topology: file path required")

// Record is one persisted cabinet registration.
type Record struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	RowLen int    `json:"row_len"`
	ColLen int    `json:"col_len"`
	Alias  string `json:"alias,omitempty"`
}

// valid applies the basic shape check used when loading persisted records.
func (r Record) valid() bool {
	return strings.TrimSpace(r.ID) != "" &&
		strings.TrimSpace(r.URL) != "" &&
		r.RowLen > 0 && r.ColLen > 0
}

// Store persists the topology record set as one JSON file. Saves are
// write-to-temporary-then-rename so a crash never leaves a partial file.
type Store struct {
	path string
}

// NewStore binds a store to one file path.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	return &Store{path: path}, nil
}

// Save atomically replaces the persisted record set.
func (s *Store) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("topology: marshal records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("topology: ensure directory: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".topology-*.json")
	if err != nil {
		return fmt.Errorf("topology: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("topology: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("topology: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("topology: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("topology: rename temp file: %w", err)
	}
	return nil
}

// Load reads the record set wholesale. A missing file is an empty topology.
// Records failing shape validation are skipped, not fatal.
func (s *Store) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("topology: read file: %w", err)
	}

	var raw []Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("topology: decode file: %w", err)
	}

	out := make([]Record, 0, len(raw))
	for i := range raw {
		if !raw[i].valid() {
			log.Warn().
				Str("id", raw[i].ID).
				Str("url", raw[i].URL).
				Msg("skipping malformed topology record")
			continue
		}
		out = append(out, raw[i])
	}
	return out, nil
}
