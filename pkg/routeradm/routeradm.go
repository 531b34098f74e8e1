// Package routeradm is a thin, read-mostly administrative layer over a
// set of tracked routers, mirroring the role the teacher's pkg/kadm
// plays over pkg/kgo: operators import this instead of the full router
// package to inspect or force-terminate sessions.
package routeradm

import (
	"context"
	"sync"
	"time"

	"github.com/shardmux/txrouter/pkg/txrouter"
)

// Registry indexes the routers currently live in a process so an
// operator tool can enumerate them without reaching into the session
// store directly. Each router's own slow-transaction log does not go
// through it.
type Registry struct {
	mu      sync.RWMutex
	routers map[txrouter.SessionID]*txrouter.Router
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{routers: make(map[txrouter.SessionID]*txrouter.Router)}
}

// Track registers router under id for later inspection.
func (r *Registry) Track(id txrouter.SessionID, router *txrouter.Router) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routers[id] = router
}

// Untrack removes id, e.g. once its session is evicted.
func (r *Registry) Untrack(id txrouter.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routers, id)
}

// ActiveReports returns a Report for every tracked router, calling only
// the observer view (ReportState), never mutating participant state.
func (r *Registry) ActiveReports() []txrouter.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reports := make([]txrouter.Report, 0, len(r.routers))
	for _, router := range r.routers {
		reports = append(reports, router.ReportState(true))
	}
	return reports
}

// SlowerThan returns the reports whose open duration exceeds d, an
// ad-hoc operator query distinct from each router's own configured
// slow-transaction threshold, which drives the automatic log/metric
// emitted when a transaction actually finishes (spec.md §4.9).
func (r *Registry) SlowerThan(d time.Duration) []txrouter.Report {
	var slow []txrouter.Report
	for _, rep := range r.ActiveReports() {
		if rep.IsSlow(d) {
			slow = append(slow, rep)
		}
	}
	return slow
}

// ForceAbort implicitly aborts the transaction tracked under id, e.g.
// for an operator killing a stuck session. It is a no-op if id is not
// tracked.
func (r *Registry) ForceAbort(ctx context.Context, id txrouter.SessionID, cause error) {
	r.mu.RLock()
	router, ok := r.routers[id]
	r.mu.RUnlock()
	if !ok {
		return
	}
	router.ImplicitlyAbortTransaction(ctx, cause)
}
