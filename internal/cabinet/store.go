package cabinet

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/luisceladatrigo/hw-mockup/internal/grid"
)

// MarkEntry is one unvalidated mark as delivered by the transport boundary.
// The store validates it into a strict grid.Mark before anything is kept.
type MarkEntry struct {
	ID    string
	Row   int
	Col   int
	Color string
}

// Store is the authoritative in-memory set of active marks for one grid.
// Unique per node, never persisted, owned by the node's request path.
type Store struct {
	desc grid.Descriptor
	now  func() time.Time

	mu        sync.RWMutex
	marks     map[string]grid.Mark
	updatedAt time.Time
}

// NewStore builds an empty mark store for one validated grid descriptor.
// The clock is injectable for tests; nil falls back to time.Now.
func NewStore(desc grid.Descriptor, now func() time.Time) (*Store, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		desc:      desc,
		now:       now,
		marks:     make(map[string]grid.Mark),
		updatedAt: now(),
	}, nil
}

// Descriptor returns the grid identity and dimensions fixed at node boot.
func (s *Store) Descriptor() grid.Descriptor {
	return s.desc
}

// Set validates and inserts or overwrites one mark. An empty id resolves to
// the coordinate-derived key so re-issuing the same cell updates in place.
func (s *Store) Set(entry MarkEntry) (grid.Mark, error) {
	mark, err := s.validate(entry)
	if err != nil {
		return grid.Mark{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[mark.ID] = mark
	s.updatedAt = mark.UpdatedAt
	return mark, nil
}

// Delete removes the mark under id if present and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.marks[id]; !ok {
		return false
	}
	delete(s.marks, id)
	s.updatedAt = s.now()
	return true
}

// Clear removes all marks.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = make(map[string]grid.Mark)
	s.updatedAt = s.now()
}

// ReplaceAll atomically discards the previous set and installs the given
// batch. Entries failing per-mark validation are dropped, not fatal.
// Returns the count installed.
func (s *Store) ReplaceAll(entries []MarkEntry) int {
	next := make(map[string]grid.Mark, len(entries))
	for i := range entries {
		mark, err := s.validate(entries[i])
		if err != nil {
			continue
		}
		next[mark.ID] = mark
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = next
	s.updatedAt = s.now()
	return len(next)
}

// Snapshot returns a deterministically ordered copy of all current marks plus
// the store's last-update timestamp, ready for serialization.
func (s *Store) Snapshot() ([]grid.Mark, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]grid.Mark, 0, len(s.marks))
	for _, m := range s.marks {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, s.updatedAt
}

// validate applies the per-mark rules shared by Set and ReplaceAll.
func (s *Store) validate(entry MarkEntry) (grid.Mark, error) {
	if err := s.desc.CheckBounds(entry.Row, entry.Col); err != nil {
		return grid.Mark{}, err
	}
	color, err := grid.ParseColor(entry.Color)
	if err != nil {
		return grid.Mark{}, err
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = grid.DeriveKey(entry.Row, entry.Col)
	}
	return grid.Mark{
		ID:        id,
		Row:       entry.Row,
		Col:       entry.Col,
		Color:     color,
		UpdatedAt: s.now(),
	}, nil
}
