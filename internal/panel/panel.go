package panel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/luisceladatrigo/hw-mockup/internal/cabinet"
	"github.com/luisceladatrigo/hw-mockup/internal/grid"
	"github.com/luisceladatrigo/hw-mockup/internal/topology"
)

// Panel owns the orchestrator state: the topology registry, the per-cabinet
// desired-state tracker, and the reconciler that pushes desired state out.
// Each instance is self-contained so tests can build isolated panels.
type Panel struct {
	registry   *Registry
	tracker    *Tracker
	reconciler *Reconciler
	client     *CabinetClient
}

// NewPanel wires an empty panel around one cabinet client. The topology
// store may be nil when persistence is not wanted.
func NewPanel(client *CabinetClient, store *topology.Store) *Panel {
	registry := NewRegistry(client, store)
	tracker := NewTracker(nil)
	return &Panel{
		registry:   registry,
		tracker:    tracker,
		reconciler: NewReconciler(tracker, registry, client),
		client:     client,
	}
}

// LoadTopology installs the persisted topology and seeds tracker entries for
// every surviving record.
func (p *Panel) LoadTopology() error {
	if err := p.registry.Load(); err != nil {
		return err
	}
	for _, entry := range p.registry.List() {
		p.tracker.Ensure(grid.Descriptor{ID: entry.ID, RowLen: entry.RowLen, ColLen: entry.ColLen})
	}
	return nil
}

// RegisterCabinet discovers the node behind url and tracks it. The desired
// state entry is created on first successful registration.
func (p *Panel) RegisterCabinet(ctx context.Context, url, alias string) (Entry, error) {
	entry, err := p.registry.Register(ctx, url, alias)
	if err != nil {
		return Entry{}, err
	}
	p.tracker.Ensure(grid.Descriptor{ID: entry.ID, RowLen: entry.RowLen, ColLen: entry.ColLen})
	log.Info().
		Str("cabinet", entry.ID).
		Str("url", entry.URL).
		Int("row_len", entry.RowLen).
		Int("col_len", entry.ColLen).
		Msg("cabinet registered")
	return entry, nil
}

// DeregisterCabinet removes the cabinet from registry and tracker.
func (p *Panel) DeregisterCabinet(cabinetID string) error {
	if err := p.registry.Deregister(cabinetID); err != nil {
		return err
	}
	p.tracker.Drop(cabinetID)
	log.Info().Str("cabinet", cabinetID).Msg("cabinet deregistered")
	return nil
}

// ListCabinets returns all registered entries in stable order.
func (p *Panel) ListCabinets() []Entry {
	return p.registry.List()
}

// ApplyMark applies one client intent: tracker upsert followed by a
// reconcile push. Validation failures never reach the node.
func (p *Panel) ApplyMark(ctx context.Context, cabinetID, id string, row, col int, color string, on bool) (int, error) {
	if err := p.tracker.Upsert(cabinetID, id, row, col, color, on); err != nil {
		return 0, err
	}
	return p.reconciler.Push(ctx, cabinetID)
}

// CabinetState reads the node's current state report through its registered
// URL, for pull-based display consumers.
func (p *Panel) CabinetState(ctx context.Context, cabinetID string) (cabinet.StateReport, error) {
	entry, ok := p.registry.Get(cabinetID)
	if !ok {
		return cabinet.StateReport{}, fmt.Errorf("%w: %s", ErrNotFound, cabinetID)
	}
	return p.client.FetchState(ctx, entry.URL)
}
