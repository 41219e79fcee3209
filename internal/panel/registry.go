package panel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luisceladatrigo/hw-mockup/internal/cabinet"
	"github.com/luisceladatrigo/hw-mockup/internal/topology"
)

var (
	// ErrInvalidDiscovery is returned when a registration probe yields no
	// usable cabinet identifier or non-positive dimensions.
	ErrInvalidDiscovery = errors.New("panel: invalid discovery")
	// ErrNotFound is returned when a caller references a cabinet id that is
	// not present in the registry.
	ErrNotFound = errors.New("panel: cabinet not found")
)

// StateProber fetches a node's self-reported state. Satisfied by
// CabinetClient; stubbed in tests.
type StateProber interface {
	FetchState(ctx context.Context, baseURL string) (cabinet.StateReport, error)
}

// Entry is one registered cabinet: where it lives and what grid it declared.
type Entry struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	RowLen       int       `json:"row_len"`
	ColLen       int       `json:"col_len"`
	Alias        string    `json:"alias,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Registry validates and records which URL serves which cabinet identity.
// The identity always comes from the node's own self-report, never from the
// caller.
type Registry struct {
	prober StateProber
	store  *topology.Store

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry builds an empty registry. The topology store may be nil for
// tests that do not exercise persistence.
func NewRegistry(prober StateProber, store *topology.Store) *Registry {
	return &Registry{
		prober:  prober,
		store:   store,
		entries: make(map[string]Entry),
	}
}

// Load installs the persisted topology wholesale. Malformed records were
// already skipped by the store.
func (r *Registry) Load() error {
	if r.store == nil {
		return nil
	}
	records, err := r.store.Load()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.entries[rec.ID] = Entry{
			ID:     rec.ID,
			URL:    rec.URL,
			RowLen: rec.RowLen,
			ColLen: rec.ColLen,
			Alias:  rec.Alias,
		}
	}
	return nil
}

// Register probes the URL's state-report endpoint and records the entry
// under the node-reported identifier. Re-registering the same identifier
// overwrites its record; last registration wins.
func (r *Registry) Register(ctx context.Context, url, alias string) (Entry, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Entry{}, fmt.Errorf("%w: url required", ErrInvalidDiscovery)
	}
	report, err := r.prober.FetchState(ctx, url)
	if err != nil {
		return Entry{}, err
	}
	if strings.TrimSpace(report.ID) == "" {
		return Entry{}, fmt.Errorf("%w: node reported empty id", ErrInvalidDiscovery)
	}
	if report.RowLen <= 0 || report.ColLen <= 0 {
		return Entry{}, fmt.Errorf(
			"%w: node reported row_len=%d col_len=%d",
			ErrInvalidDiscovery, report.RowLen, report.ColLen,
		)
	}

	entry := Entry{
		ID:           strings.TrimSpace(report.ID),
		URL:          url,
		RowLen:       report.RowLen,
		ColLen:       report.ColLen,
		Alias:        strings.TrimSpace(alias),
		RegisteredAt: time.Now(),
	}
	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.persistLocked()
	r.mu.Unlock()
	return entry, nil
}

// Deregister removes one entry; ErrNotFound when absent.
func (r *Registry) Deregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.entries, id)
	r.persistLocked()
	return nil
}

// Get returns one entry by cabinet id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// List returns all entries in stable order by identifier.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// persistLocked writes the current record set through the topology store.
// A failed save keeps the in-memory registration and is surfaced in the log.
func (r *Registry) persistLocked() {
	if r.store == nil {
		return
	}
	records := make([]topology.Record, 0, len(r.entries))
	for _, e := range r.entries {
		records = append(records, topology.Record{
			ID:     e.ID,
			URL:    e.URL,
			RowLen: e.RowLen,
			ColLen: e.ColLen,
			Alias:  e.Alias,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if err := r.store.Save(records); err != nil {
		log.Warn().Err(err).Msg("topology persist failed")
	}
}
