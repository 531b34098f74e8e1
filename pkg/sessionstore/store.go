// Package sessionstore is a reference implementation of the "session
// store" external collaborator spec.md names: it owns per-session
// Router instances and enforces that each is checked out to at most
// one operation at a time (spec.md §5).
package sessionstore

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shardmux/txrouter/pkg/txrouter"
)

// entry's lock is a 1-buffered channel rather than a sync.Mutex so
// Checkout can select on ctx.Done() instead of blocking forever.
type entry struct {
	lock   chan struct{}
	router *txrouter.Router
}

func newEntry(r *txrouter.Router) *entry {
	e := &entry{lock: make(chan struct{}, 1), router: r}
	e.lock <- struct{}{}
	return e
}

// Store is a capacity-bounded, concurrency-safe map from session id to
// *txrouter.Router. Eviction of an idle session is a cache-capacity
// decision, not a correctness one: spec.md's non-goal "no durable
// storage of router state" means an evicted session simply starts a
// fresh Router on next contact, exactly as if the process had
// restarted.
type Store struct {
	mu      sync.Mutex
	entries *lru.Cache[txrouter.SessionID, *entry]
}

// New returns a Store holding at most capacity sessions.
func New(capacity int) *Store {
	c, err := lru.New[txrouter.SessionID, *entry](capacity)
	if err != nil {
		// Only returned by golang-lru for capacity <= 0.
		panic(fmt.Sprintf("sessionstore: invalid capacity %d: %v", capacity, err))
	}
	return &Store{entries: c}
}

// CheckedOut is a session's Router held exclusively by the caller until
// Release is called.
type CheckedOut struct {
	Router *txrouter.Router
	e      *entry
}

// Release stashes the router (spec.md §6 "stash()") and lets another
// operation check the session out.
func (c *CheckedOut) Release() {
	c.Router.Stash()
	c.e.lock <- struct{}{}
}

// Checkout returns the Router for id, creating it via newRouter if this
// is the session's first contact, and blocks until no other operation
// holds it checked out. The caller must call Release when done.
func (s *Store) Checkout(ctx context.Context, id txrouter.SessionID, newRouter func() *txrouter.Router) (*CheckedOut, error) {
	s.mu.Lock()
	e, ok := s.entries.Get(id)
	if !ok {
		e = newEntry(newRouter())
		s.entries.Add(id, e)
	}
	s.mu.Unlock()

	select {
	case <-e.lock:
		return &CheckedOut{Router: e.router, e: e}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Evict forcibly drops id's entry, e.g. after a session is closed by
// its owning client.
func (s *Store) Evict(id txrouter.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Remove(id)
}

// Len reports how many sessions are currently tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}
