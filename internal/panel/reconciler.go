package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luisceladatrigo/hw-mockup/internal/cabinet"
	"github.com/luisceladatrigo/hw-mockup/internal/observability"
)

// MarkPusher issues one full-replace call to a node. Satisfied by
// CabinetClient; stubbed in tests.
type MarkPusher interface {
	PushMarks(ctx context.Context, baseURL string, marks []cabinet.MarkPayload) (int, error)
}

// Reconciler converts a tracker snapshot into a full replace-all push to the
// owning node. Every push carries the complete desired state; a lost push is
// corrected by the next one.
type Reconciler struct {
	tracker  *Tracker
	registry *Registry
	pusher   MarkPusher

	mu       sync.Mutex
	inFlight map[string]*sync.Mutex
}

// NewReconciler wires the reconciler to its desired-state and topology views.
func NewReconciler(tracker *Tracker, registry *Registry, pusher MarkPusher) *Reconciler {
	return &Reconciler{
		tracker:  tracker,
		registry: registry,
		pusher:   pusher,
		inFlight: make(map[string]*sync.Mutex),
	}
}

// Push serializes one full-replace of the cabinet's desired state and
// returns the count of marks the node reports as installed. Pushes to the
// same cabinet are serialized; different cabinets push concurrently. No
// internal retry.
func (r *Reconciler) Push(ctx context.Context, cabinetID string) (int, error) {
	lock := r.cabinetLock(cabinetID)
	lock.Lock()
	defer lock.Unlock()

	entry, ok := r.registry.Get(cabinetID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCabinet, cabinetID)
	}
	// Snapshot under the per-cabinet lock: a later intent's push will see
	// its own later snapshot.
	marks, err := r.tracker.SnapshotFor(cabinetID)
	if err != nil {
		return 0, err
	}
	payload := make([]cabinet.MarkPayload, 0, len(marks))
	for i := range marks {
		payload = append(payload, cabinet.MarkPayload{
			ID:    marks[i].ID,
			Row:   marks[i].Row,
			Col:   marks[i].Col,
			Color: string(marks[i].Color),
		})
	}

	start := time.Now()
	installed, err := r.pusher.PushMarks(ctx, entry.URL, payload)
	observability.RecordReconcilePush(cabinetID, pushOutcome(err), time.Since(start))
	if err != nil {
		return 0, err
	}
	return installed, nil
}

func pushOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNodeRejected):
		return "node_rejected"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	default:
		return "error"
	}
}

// cabinetLock returns the single in-flight-push lock for one cabinet.
func (r *Reconciler) cabinetLock(cabinetID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.inFlight[cabinetID]
	if !ok {
		lock = &sync.Mutex{}
		r.inFlight[cabinetID] = lock
	}
	return lock
}
