package txrouter

import (
	"context"
	"testing"
)

func TestAttachTxnFieldsFirstContactSetsStartTransaction(t *testing.T) {
	r := New(newTestSessionID(10))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, &ReadConcern{Level: ReadConcernSnapshot}, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	cmd := r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	if !cmd.StartTransaction {
		t.Fatal("expected StartTransaction set on first contact")
	}
	if cmd.ReadConcern == nil || cmd.ReadConcern.Level != ReadConcernSnapshot {
		t.Fatalf("expected the transaction's read concern attached, got %+v", cmd.ReadConcern)
	}
	if !cmd.Coordinator {
		t.Fatal("expected the first-contacted shard marked coordinator")
	}
}

func TestAttachTxnFieldsSubsequentContactOmitsReadConcern(t *testing.T) {
	r := New(newTestSessionID(11))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, &ReadConcern{Level: ReadConcernSnapshot}, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	cmd := r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})
	if cmd.StartTransaction {
		t.Fatal("StartTransaction must not be set on a repeat contact")
	}
	if cmd.ReadConcern != nil {
		t.Fatal("a repeat contact must not carry a read concern")
	}
}

func TestAttachTxnFieldsSecondShardIsNotCoordinator(t *testing.T) {
	r := New(newTestSessionID(12))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	r.AttachTxnFieldsIfNeeded("A", Command{Name: "insert"})
	cmd := r.AttachTxnFieldsIfNeeded("B", Command{Name: "insert"})
	if cmd.Coordinator {
		t.Fatal("only the first-contacted shard is coordinator")
	}
}

func TestAttachTxnFieldsControlCommandNeverCarriesReadConcern(t *testing.T) {
	r := New(newTestSessionID(13))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, &ReadConcern{Level: ReadConcernSnapshot}, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	cmd := r.AttachTxnFieldsIfNeeded("A", Command{Name: "abortTransaction"})
	if cmd.ReadConcern != nil {
		t.Fatal("a transaction-control command must never carry a read concern, even on first contact")
	}
}
