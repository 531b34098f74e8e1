package txrouter

import (
	"context"
	"errors"
	"testing"

	"github.com/shardmux/txrouter/pkg/txrouter/rerr"
)

func beginAndContact(t *testing.T, r *Router, shard ShardID) {
	t.Helper()
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.AttachTxnFieldsIfNeeded(shard, Command{Name: "find"})
}

func TestProcessParticipantResponseReadOnlyTrue(t *testing.T) {
	r := New(newTestSessionID(20))
	beginAndContact(t, r, "A")

	if err := r.ProcessParticipantResponse("A", Response{OK: true, ReadOnly: readOnlyPtr(true)}); err != nil {
		t.Fatalf("process response: %v", err)
	}
	if got := r.participants["A"].ReadOnly(); got != ReadOnlyTrue {
		t.Fatalf("readOnly = %v, want ReadOnlyTrue", got)
	}
}

// TestProcessParticipantResponseWroteThenClaimedReadOnlyIsFatal is
// invariant coverage for spec.md §4.4/invariant 5: once a participant
// has been observed to write, it can never claim read-only afterward.
func TestProcessParticipantResponseWroteThenClaimedReadOnlyIsFatal(t *testing.T) {
	r := New(newTestSessionID(21))
	beginAndContact(t, r, "A")

	if err := r.ProcessParticipantResponse("A", Response{OK: true, ReadOnly: readOnlyPtr(false)}); err != nil {
		t.Fatalf("first response: %v", err)
	}
	err := r.ProcessParticipantResponse("A", Response{OK: true, ReadOnly: readOnlyPtr(true)})
	if !errors.Is(err, rerr.ErrParticipantWroteThenClaimedRO) {
		t.Fatalf("expected ErrParticipantWroteThenClaimedRO, got %v", err)
	}
}

func TestProcessParticipantResponseElectsRecoveryShardOnFirstWrite(t *testing.T) {
	r := New(newTestSessionID(22))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	r.AttachTxnFieldsIfNeeded("B", Command{Name: "insert"})

	if err := r.ProcessParticipantResponse("A", Response{OK: true, ReadOnly: readOnlyPtr(true)}); err != nil {
		t.Fatalf("A response: %v", err)
	}
	if err := r.ProcessParticipantResponse("B", Response{OK: true, ReadOnly: readOnlyPtr(false)}); err != nil {
		t.Fatalf("B response: %v", err)
	}

	token := r.AppendRecoveryToken()
	if token.IsEmpty() || *token.RecoveryShardID != "B" {
		t.Fatalf("expected recovery shard B, got %+v", token)
	}
}

func TestProcessParticipantResponseStaleParticipantMissingReadOnly(t *testing.T) {
	r := New(newTestSessionID(23))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	if err := r.BeginOrContinue(ctx, 1, ActionContinue, nil, ClientInfo{}); err != nil {
		t.Fatalf("continue: %v", err)
	}

	err := r.ProcessParticipantResponse("A", Response{OK: true, ReadOnly: nil})
	if !errors.Is(err, rerr.ErrStaleParticipantMissingReadOnly) {
		t.Fatalf("expected ErrStaleParticipantMissingReadOnly, got %v", err)
	}
}

func TestProcessParticipantResponseIgnoresNonOK(t *testing.T) {
	r := New(newTestSessionID(24))
	beginAndContact(t, r, "A")

	if err := r.ProcessParticipantResponse("A", Response{OK: false, ErrorCode: "NoSuchTransaction"}); err != nil {
		t.Fatalf("a non-OK response must never itself be an error: %v", err)
	}
	if got := r.participants["A"].ReadOnly(); got != ReadOnlyUnset {
		t.Fatalf("readOnly = %v, want still unset after a non-OK response", got)
	}
}
