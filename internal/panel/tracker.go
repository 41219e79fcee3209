package panel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/luisceladatrigo/hw-mockup/internal/grid"
)

// ErrUnknownCabinet is returned when an intent addresses a cabinet the
// tracker has never seen a registration for.
var ErrUnknownCabinet = errors.New("panel: unknown cabinet")

// trackedCabinet is the desired mark set for one cabinet, shaped like the
// node's own store and keyed the same way.
type trackedCabinet struct {
	desc  grid.Descriptor
	marks map[string]grid.Mark
}

// Tracker maintains the orchestrator's desired state per cabinet: what each
// grid should display, independent of whether the node has received it yet.
type Tracker struct {
	now func() time.Time

	mu       sync.RWMutex
	cabinets map[string]*trackedCabinet
}

// NewTracker builds an empty tracker with an injectable clock.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:      now,
		cabinets: make(map[string]*trackedCabinet),
	}
}

// Ensure creates the desired-state entry for one cabinet on registration.
// Re-registering keeps any marks already tracked but adopts the latest
// declared dimensions.
func (t *Tracker) Ensure(desc grid.Descriptor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.cabinets[desc.ID]; ok {
		existing.desc = desc
		return
	}
	t.cabinets[desc.ID] = &trackedCabinet{
		desc:  desc,
		marks: make(map[string]grid.Mark),
	}
}

// Drop removes the desired-state entry on deregistration.
func (t *Tracker) Drop(cabinetID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cabinets, cabinetID)
}

// Upsert applies one client intent. on=true validates the mark against the
// cabinet's declared grid and installs it under the resolved key; on=false
// removes the entry for the resolved key. The key is the explicit id when
// given, else the coordinate-derived key, so id-less re-issues of the same
// cell update in place while explicit ids may coexist at one coordinate.
func (t *Tracker) Upsert(cabinetID, id string, row, col int, color string, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.cabinets[cabinetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCabinet, cabinetID)
	}

	key := strings.TrimSpace(id)
	if key == "" {
		key = grid.DeriveKey(row, col)
	}
	if !on {
		delete(entry.marks, key)
		return nil
	}

	if err := entry.desc.CheckBounds(row, col); err != nil {
		return err
	}
	normalized, err := grid.ParseColor(color)
	if err != nil {
		return err
	}
	entry.marks[key] = grid.Mark{
		ID:        key,
		Row:       row,
		Col:       col,
		Color:     normalized,
		UpdatedAt: t.now(),
	}
	return nil
}

// SnapshotFor returns the cabinet's current desired mark list in stable key
// order, ready for a full-replace push.
func (t *Tracker) SnapshotFor(cabinetID string) ([]grid.Mark, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.cabinets[cabinetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCabinet, cabinetID)
	}
	out := make([]grid.Mark, 0, len(entry.marks))
	for _, m := range entry.marks {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
