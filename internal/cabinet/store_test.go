package cabinet

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/luisceladatrigo/hw-mockup/internal/grid"
	"github.com/luisceladatrigo/hw-mockup/internal/testutil/testlog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	clock := time.Unix(1000, 0)
	s, err := NewStore(grid.Descriptor{ID: "cab-test", RowLen: 4, ColLen: 4}, func() time.Time { return clock })
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestStoreRejectsInvalidDescriptor(t *testing.T) {
	testlog.Start(t)

	if _, err := NewStore(grid.Descriptor{ID: "", RowLen: 4, ColLen: 4}, nil); !errors.Is(err, grid.ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
	if _, err := NewStore(grid.Descriptor{ID: "cab", RowLen: 0, ColLen: 4}, nil); !errors.Is(err, grid.ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor for zero row_len, got %v", err)
	}
}

func TestStoreSetSnapshotDeleteRoundTrip(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	mark, err := s.Set(MarkEntry{ID: "m1", Row: 1, Col: 2, Color: "#FF0000"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if mark.Color != "#ff0000" {
		t.Fatalf("color not normalized: %q", mark.Color)
	}

	marks, _ := s.Snapshot()
	if len(marks) != 1 || marks[0].ID != "m1" || marks[0].Row != 1 || marks[0].Col != 2 {
		t.Fatalf("unexpected snapshot after set: %#v", marks)
	}

	if !s.Delete("m1") {
		t.Fatalf("delete reported mark missing")
	}
	if s.Delete("m1") {
		t.Fatalf("second delete reported mark present")
	}
	marks, _ = s.Snapshot()
	if len(marks) != 0 {
		t.Fatalf("snapshot not empty after delete: %#v", marks)
	}
}

func TestStoreSetValidation(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	if _, err := s.Set(MarkEntry{Row: 9, Col: 0, Color: "#ff0000"}); !errors.Is(err, grid.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := s.Set(MarkEntry{Row: 0, Col: 0, Color: "red"}); !errors.Is(err, grid.ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if marks, _ := s.Snapshot(); len(marks) != 0 {
		t.Fatalf("failed sets must not leave marks behind: %#v", marks)
	}
}

func TestStoreDerivedKeyUpdatesInPlace(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	if _, err := s.Set(MarkEntry{Row: 1, Col: 2, Color: "#ff0000"}); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if _, err := s.Set(MarkEntry{Row: 1, Col: 2, Color: "#0000ff"}); err != nil {
		t.Fatalf("second set: %v", err)
	}
	marks, _ := s.Snapshot()
	if len(marks) != 1 {
		t.Fatalf("expected single derived-key mark, got %d", len(marks))
	}
	if marks[0].ID != "r1c2" || marks[0].Color != "#0000ff" {
		t.Fatalf("derived-key mark not updated in place: %#v", marks[0])
	}
}

func TestStoreReplaceAllIdempotent(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	batch := []MarkEntry{
		{ID: "a", Row: 0, Col: 0, Color: "#ff0000"},
		{ID: "b", Row: 2, Col: 3, Color: "#00ff00"},
	}
	if got := s.ReplaceAll(batch); got != 2 {
		t.Fatalf("first replace installed %d, want 2", got)
	}
	first, _ := s.Snapshot()
	if got := s.ReplaceAll(batch); got != 2 {
		t.Fatalf("second replace installed %d, want 2", got)
	}
	second, _ := s.Snapshot()
	if len(first) != len(second) {
		t.Fatalf("replace not idempotent: %d vs %d marks", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Color != second[i].Color {
			t.Fatalf("replace not idempotent at %d: %#v vs %#v", i, first[i], second[i])
		}
	}
}

func TestStoreReplaceAllDropsInvalidEntries(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	if _, err := s.Set(MarkEntry{ID: "old", Row: 3, Col: 3, Color: "#ffffff"}); err != nil {
		t.Fatalf("seed mark: %v", err)
	}
	installed := s.ReplaceAll([]MarkEntry{
		{ID: "good", Row: 1, Col: 1, Color: "#ff0000"},
		{ID: "far", Row: 99, Col: 1, Color: "#ff0000"},
		{ID: "ugly", Row: 1, Col: 2, Color: "not-a-color"},
	})
	if installed != 1 {
		t.Fatalf("installed %d, want 1", installed)
	}
	marks, _ := s.Snapshot()
	if len(marks) != 1 || marks[0].ID != "good" {
		t.Fatalf("replace must discard previous set and invalid entries: %#v", marks)
	}
}

func TestStoreClear(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	s.ReplaceAll([]MarkEntry{
		{ID: "a", Row: 0, Col: 0, Color: "#ff0000"},
		{ID: "b", Row: 1, Col: 1, Color: "#00ff00"},
	})
	s.Clear()
	if marks, _ := s.Snapshot(); len(marks) != 0 {
		t.Fatalf("clear left marks behind: %#v", marks)
	}
}

func TestStoreSnapshotDeterministicOrder(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	s.ReplaceAll([]MarkEntry{
		{ID: "z", Row: 0, Col: 0, Color: "#ff0000"},
		{ID: "a", Row: 1, Col: 1, Color: "#00ff00"},
		{ID: "m", Row: 2, Col: 2, Color: "#0000ff"},
	})
	marks, _ := s.Snapshot()
	if marks[0].ID != "a" || marks[1].ID != "m" || marks[2].ID != "z" {
		t.Fatalf("snapshot not ordered by id: %#v", marks)
	}
}

func TestStoreConcurrentReplaceAndSnapshot(t *testing.T) {
	testlog.Start(t)

	s := newTestStore(t)
	batchA := []MarkEntry{{ID: "a1", Row: 0, Col: 0, Color: "#ff0000"}, {ID: "a2", Row: 0, Col: 1, Color: "#ff0000"}}
	batchB := []MarkEntry{{ID: "b1", Row: 1, Col: 0, Color: "#00ff00"}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.ReplaceAll(batchA)
			s.ReplaceAll(batchB)
		}()
		go func() {
			defer wg.Done()
			marks, _ := s.Snapshot()
			// A snapshot must observe a whole batch, never a half-applied mix.
			seen := make(map[string]bool, len(marks))
			for _, m := range marks {
				seen[m.ID] = true
			}
			if seen["b1"] && (seen["a1"] || seen["a2"]) {
				t.Errorf("torn snapshot mixes batches: %#v", marks)
			}
			if seen["a1"] != seen["a2"] {
				t.Errorf("torn snapshot splits batch A: %#v", marks)
			}
		}()
	}
	wg.Wait()
}
