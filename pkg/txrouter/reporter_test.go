package txrouter

import (
	"context"
	"testing"
	"time"
)

func TestReportStateListsParticipantsInContactOrder(t *testing.T) {
	r := New(newTestSessionID(60))
	ctx := context.Background()
	if err := r.BeginOrContinue(ctx, 1, ActionStart, nil, ClientInfo{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.AttachTxnFieldsIfNeeded("B", Command{Name: "find"})
	r.AttachTxnFieldsIfNeeded("A", Command{Name: "find"})

	rep := r.ReportState(true)
	if len(rep.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(rep.Participants))
	}
	if rep.Participants[0].ShardID != "B" || rep.Participants[1].ShardID != "A" {
		t.Fatalf("expected contact order B, A; got %v", rep.Participants)
	}
	if !rep.Participants[0].Coordinator {
		t.Fatal("expected the first-contacted shard reported as coordinator")
	}
}

func TestReportIsSlow(t *testing.T) {
	rep := Report{OpenDuration: 2 * time.Second}
	if !rep.IsSlow(time.Second) {
		t.Fatal("expected IsSlow true when open duration exceeds the threshold")
	}
	if rep.IsSlow(3 * time.Second) {
		t.Fatal("expected IsSlow false when open duration is under the threshold")
	}
}
