package txrouter

import (
	"context"
	"testing"
)

func TestCanContinueOnStaleShardOrDBErrorFirstStatementAlwaysAllowed(t *testing.T) {
	r := New(newTestSessionID(50))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if !r.CanContinueOnStaleShardOrDBError("insert") {
		t.Fatal("the first statement of a transaction may always retry a stale routing error")
	}
}

func TestCanContinueOnStaleShardOrDBErrorLaterWriteStatementIsNotRetried(t *testing.T) {
	r := New(newTestSessionID(51))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.BeginOrContinue(ctx, 1, ActionContinue, nil, ClientInfo{}); err != nil {
		t.Fatalf("continue: %v", err)
	}

	if r.CanContinueOnStaleShardOrDBError("insert") {
		t.Fatal("a write past the first statement must not be silently retried")
	}
	if !r.CanContinueOnStaleShardOrDBError("find") {
		t.Fatal("a read-only command past the first statement is still retriable")
	}
}

func TestCanContinueOnStaleShardOrDBErrorRespectsFeatureGate(t *testing.T) {
	r := New(newTestSessionID(52), WithStaleRoutingRetryEnabled(false))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if r.CanContinueOnStaleShardOrDBError("find") {
		t.Fatal("the feature gate must disable all stale-routing retries")
	}
}

func TestOnStaleShardOrDBErrorClearsOnlyThisStatementsParticipants(t *testing.T) {
	transport := newFakeTransport()
	r := New(newTestSessionID(53), WithTransport(transport))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	if err := r.ProcessParticipantResponse("A", Response{OK: true, ReadOnly: readOnlyPtr(true)}); err != nil {
		t.Fatalf("A response: %v", err)
	}
	if err := r.BeginOrContinue(ctx, 1, ActionContinue, nil, ClientInfo{}); err != nil {
		t.Fatalf("continue: %v", err)
	}
	r.AttachTxnFieldsIfNeeded("B", Command{Name: "find"})

	if err := r.OnStaleShardOrDBError(ctx); err != nil {
		t.Fatalf("clear pending: %v", err)
	}

	if _, ok := r.participants["A"]; !ok {
		t.Fatal("a prior statement's participant must survive clearing")
	}
	if _, ok := r.participants["B"]; ok {
		t.Fatal("this statement's just-created participant must be cleared")
	}
}

func TestCanContinueOnSnapshotErrorRespectsFeatureGate(t *testing.T) {
	r := New(newTestSessionID(54), WithSnapshotRetryEnabled(false))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, &ReadConcern{Level: ReadConcernSnapshot}, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if r.CanContinueOnSnapshotError() {
		t.Fatal("the feature gate must disable snapshot-error retries")
	}
}

func TestOnSnapshotErrorClearsEveryParticipantAndRearmsSnapshot(t *testing.T) {
	transport := newFakeTransport()
	r := New(newTestSessionID(55), WithTransport(transport))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, &ReadConcern{Level: ReadConcernSnapshot}, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	r.AttachTxnFieldsIfNeeded("B", Command{Name: "find"})

	if err := r.OnSnapshotError(ctx); err != nil {
		t.Fatalf("on snapshot error: %v", err)
	}

	if len(r.participants) != 0 {
		t.Fatalf("expected every participant cleared, got %d", len(r.participants))
	}
	if !r.atClusterTime.canChange(r.latestStmtID) {
		t.Fatal("expected a fresh snapshot holder that can still change")
	}
}
