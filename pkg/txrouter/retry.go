package txrouter

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CanContinueOnStaleShardOrDBError reports whether a stale shard/db
// routing error may be silently retried for the statement that issued
// cmdName (spec.md §4.5): only with the feature gate on, and only if
// this is the transaction's first statement or cmdName is one of the
// read-only commands allowed mid-transaction.
func (r *Router) CanContinueOnStaleShardOrDBError(cmdName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cfg.staleRoutingRetryEnabled {
		return false
	}
	return r.latestStmtID == r.firstStmtID || idempotentUnderTxn(cmdName)
}

// OnStaleShardOrDBError clears this statement's pending participants
// after a best-effort abort broadcast to them (spec.md §4.5).
func (r *Router) OnStaleShardOrDBError(ctx context.Context) error {
	return r.clearPendingParticipants(ctx)
}

// CanContinueOnSnapshotError reports whether a snapshot-unavailable
// error may be silently retried (spec.md §4.5): only with the feature
// gate on, and only if the snapshot can still move.
func (r *Router) CanContinueOnSnapshotError() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cfg.snapshotRetryEnabled {
		return false
	}
	return r.atClusterTime.canChange(r.latestStmtID)
}

// OnSnapshotError clears every participant (including the coordinator)
// and resets atClusterTime to a fresh empty holder so the next
// targeting selects a new snapshot (spec.md §4.5).
func (r *Router) OnSnapshotError(ctx context.Context) error {
	r.mu.Lock()
	all := append([]ShardID(nil), r.participantOrder...)
	transport := r.cfg.transport
	txnNumber := r.txnNumber
	r.mu.Unlock()

	broadcastBestEffortAbort(ctx, transport, all, txnNumber)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = make(map[ShardID]*Participant)
	r.participantOrder = nil
	r.coordinatorID = nil
	r.recoveryShardID = nil
	r.atClusterTime = newAtClusterTimeHolder()
	return nil
}

// OnViewResolutionError clears this statement's pending participants;
// always allowed, no feature gate (spec.md §4.5).
func (r *Router) OnViewResolutionError(ctx context.Context) error {
	return r.clearPendingParticipants(ctx)
}

// clearPendingParticipants implements the shared "remove this
// statement's just-created participants" clearing spec.md §4.5
// describes for both the stale-routing and view-resolution paths.
func (r *Router) clearPendingParticipants(ctx context.Context) error {
	r.mu.Lock()
	stmtID := r.latestStmtID
	var pending []ShardID
	for _, id := range r.participantOrder {
		if r.participants[id].stmtIdCreatedAt == stmtID {
			pending = append(pending, id)
		}
	}
	transport := r.cfg.transport
	txnNumber := r.txnNumber
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	broadcastBestEffortAbort(ctx, transport, pending, txnNumber)

	r.mu.Lock()
	defer r.mu.Unlock()
	pendingSet := make(map[ShardID]bool, len(pending))
	for _, id := range pending {
		pendingSet[id] = true
		delete(r.participants, id)
		if r.recoveryShardID != nil && *r.recoveryShardID == id {
			r.recoveryShardID = nil
		}
	}
	kept := r.participantOrder[:0:0]
	for _, id := range r.participantOrder {
		if !pendingSet[id] {
			kept = append(kept, id)
		}
	}
	r.participantOrder = kept
	if len(r.participants) == 0 {
		r.coordinatorID = nil
	}
	return nil
}

// broadcastBestEffortAbort sends abortTransaction to every shard in
// ids, accepting NoSuchTransaction and swallowing all other errors —
// the clearing path does not fail the caller's retry on a shard that
// never actually started a transaction.
func broadcastBestEffortAbort(ctx context.Context, transport ShardTransport, ids []ShardID, txnNumber int64) {
	if transport == nil || len(ids) == 0 {
		return
	}
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, _ = transport.Send(ctx, id, Command{
				Name:       "abortTransaction",
				TxnNumber:  txnNumber,
				Autocommit: false,
			})
			return nil
		})
	}
	_ = g.Wait()
}
