package routeradm

import (
	"context"
	"testing"
	"time"

	"github.com/shardmux/txrouter/pkg/txrouter"
)

func testSessionID(b byte) txrouter.SessionID {
	var id txrouter.SessionID
	id[0] = b
	return id
}

func TestTrackAndUntrack(t *testing.T) {
	reg := NewRegistry()
	id := testSessionID(1)
	r := txrouter.New(id)

	reg.Track(id, r)
	if len(reg.ActiveReports()) != 1 {
		t.Fatalf("expected 1 active report after Track, got %d", len(reg.ActiveReports()))
	}

	reg.Untrack(id)
	if len(reg.ActiveReports()) != 0 {
		t.Fatalf("expected 0 active reports after Untrack, got %d", len(reg.ActiveReports()))
	}
}

func TestSlowerThan(t *testing.T) {
	reg := NewRegistry()
	id := testSessionID(2)
	r := txrouter.New(id)
	reg.Track(id, r)

	if len(reg.SlowerThan(time.Hour)) != 0 {
		t.Fatal("a fresh session must not be reported as slow against an hour-long threshold")
	}
	if len(reg.SlowerThan(0)) != 1 {
		t.Fatal("every session is slower than a zero threshold")
	}
}

func TestForceAbortIsNoOpForUntrackedSession(t *testing.T) {
	reg := NewRegistry()
	reg.ForceAbort(context.Background(), testSessionID(3), nil)
}
