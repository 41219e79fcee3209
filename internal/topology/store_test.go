package topology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/luisceladatrigo/hw-mockup/internal/testutil/testlog"
)

func TestStoreRequiresPath(t *testing.T) {
	testlog.Start(t)

	if _, err := NewStore("  "); !errors.Is(err, ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "topology.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	records := []Record{
		{ID: "cab-a", URL: "http://127.0.0.1:7101", RowLen: 3, ColLen: 3, Alias: "left"},
		{ID: "cab-b", URL: "http://127.0.0.1:7102", RowLen: 8, ColLen: 8},
	}
	if err := s.Save(records); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "cab-a" || got[1].ColLen != 8 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	testlog.Start(t)

	s, err := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty topology, got %#v", got)
	}
}

func TestStoreLoadSkipsMalformedRecords(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "topology.json")
	blob := `[
		{"id":"cab-a","url":"http://127.0.0.1:7101","row_len":3,"col_len":3},
		{"id":"","url":"http://127.0.0.1:7102","row_len":3,"col_len":3},
		{"id":"cab-c","url":"","row_len":3,"col_len":3},
		{"id":"cab-d","url":"http://127.0.0.1:7104","row_len":0,"col_len":3}
	]`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "cab-a" {
		t.Fatalf("expected only the valid record, got %#v", got)
	}
}

func TestStoreSaveOverwritesAtomically(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "topology.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Save([]Record{{ID: "cab-a", URL: "http://x", RowLen: 1, ColLen: 1}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save([]Record{{ID: "cab-b", URL: "http://y", RowLen: 2, ColLen: 2}}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "cab-b" {
		t.Fatalf("second save must replace the record set: %#v", got)
	}

	// No temp leftovers next to the file.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the topology file, got %d entries", len(entries))
	}
}
