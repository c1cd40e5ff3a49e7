package triangulation

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/triangulate/internal/monitoring"
	"github.com/banshee-data/triangulate/internal/timeutil"
)

// Runner serializes access to a Coordinator so a periodic update loop and
// debug handlers can share it.
type Runner struct {
	mu    sync.Mutex
	coord *Coordinator

	clearOnEmptyScan bool
	useCache         bool
}

// NewRunner wraps coord with the update flags used for every update.
func NewRunner(coord *Coordinator, clearOnEmptyScan, useCache bool) *Runner {
	return &Runner{
		coord:            coord,
		clearOnEmptyScan: clearOnEmptyScan,
		useCache:         useCache,
	}
}

// Begin runs Coordinator.Begin under the runner lock.
func (r *Runner) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coord.Begin()
}

// End runs Coordinator.End under the runner lock.
func (r *Runner) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coord.End()
}

// Update begins the coordinator if needed, then refreshes the companion's
// triangulation data.
func (r *Runner) Update() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.coord.Begin(); err != nil {
		return err
	}
	return r.coord.UpdateTriangulationData(r.clearOnEmptyScan, r.useCache)
}

// Records returns the records of the last scan without rescanning.
func (r *Runner) Records() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for rec := range r.coord.records() {
		out = append(out, rec)
	}
	return out
}

// LogCachedSsids runs Coordinator.LogCachedSsids under the runner lock.
func (r *Runner) LogCachedSsids() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coord.LogCachedSsids()
}

// State returns the coordinator's scan state.
func (r *Runner) State() ScanState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coord.State()
}

// Run updates immediately and then once per interval until ctx is done, then
// ends the coordinator. Failed updates are logged and retried on the next
// tick.
func (r *Runner) Run(ctx context.Context, clock timeutil.Clock, interval time.Duration) error {
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.Update(); err != nil {
			monitoring.Logf("triangulation update failed (code %d): %v", CodeOf(err), err)
		}

		select {
		case <-ctx.Done():
			if err := r.End(); err != nil {
				monitoring.Logf("failed to end triangulation: %v", err)
			}
			return ctx.Err()
		case <-ticker.C():
		}
	}
}
