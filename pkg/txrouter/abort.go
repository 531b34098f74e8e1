package txrouter

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AbortTransaction broadcasts abortTransaction to every participant and
// returns the first error response or the last response, per the same
// rule direct multi-shard commit uses (spec.md §4.7).
func (r *Router) AbortTransaction(ctx context.Context) (Response, error) {
	r.mu.Lock()
	if len(r.participantOrder) == 0 {
		r.mu.Unlock()
		return Response{}, NoSuchTransactionErr()
	}
	r.terminationInitiated = true
	if r.abortCause == "" {
		r.abortCause = "abort"
	}
	order := append([]ShardID(nil), r.participantOrder...)
	txnNumber := r.txnNumber
	transport := r.cfg.transport
	r.mu.Unlock()

	resp, err := directAbortMulti(ctx, transport, order, txnNumber, true)

	r.mu.Lock()
	r.timing.markEnd()
	r.cfg.metrics.TransactionAborted(r.abortCause)
	r.cfg.logger.Log(LogLevelInfo, "transaction explicitly aborted", "session", r.sessionID, "cause", r.abortCause)
	r.checkSlowTransactionLocked()
	r.mu.Unlock()

	return resp, err
}

// ImplicitlyAbortTransaction is called on any transactional failure
// (spec.md §4.7). It is a no-op once a two-phase commit or recovery
// hand-off has been dispatched, because the coordinator now owns the
// outcome; otherwise it broadcasts a best-effort abort (no write
// concern) and swallows every error.
func (r *Router) ImplicitlyAbortTransaction(ctx context.Context, errStatus error) {
	r.mu.Lock()
	if r.abortCause == "" && errStatus != nil {
		r.abortCause = codeStringOf(errStatus)
	}
	coordinatorOwnsOutcome := r.commitType == CommitTypeTwoPhaseCommit || r.commitType == CommitTypeRecoverWithToken
	order := append([]ShardID(nil), r.participantOrder...)
	txnNumber := r.txnNumber
	transport := r.cfg.transport
	commitStarted := !r.timing.commitStartTime.IsZero()
	r.mu.Unlock()

	if coordinatorOwnsOutcome {
		return
	}

	if len(order) > 0 {
		broadcastBestEffortAbort(ctx, transport, order, txnNumber)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.logger.Log(LogLevelInfo, "transaction implicitly aborted", "session", r.sessionID, "cause", r.abortCause)
	// If commit had started but not ended, the outcome remains unknown:
	// do not mark terminationInitiated or finalize timing here.
	if commitStarted && r.timing.endTime.IsZero() {
		return
	}
	r.terminationInitiated = true
	r.timing.markEnd()
	r.cfg.metrics.TransactionAborted(r.abortCause)
	r.checkSlowTransactionLocked()
}

// directAbortMulti is directCommitMulti's sibling for abortTransaction,
// optionally attaching a write concern marker.
func directAbortMulti(ctx context.Context, transport ShardTransport, ids []ShardID, txnNumber int64, withWriteConcern bool) (Response, error) {
	responses := make([]Response, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			resp, err := transport.Send(ctx, id, Command{
				Name:         "abortTransaction",
				TxnNumber:    txnNumber,
				Autocommit:   false,
				WriteConcern: withWriteConcern,
			})
			responses[i] = resp
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	for i := range ids {
		if errs[i] != nil {
			return responses[i], errs[i]
		}
		if !responses[i].OK || responses[i].WriteConcernError {
			return responses[i], responseToError(responses[i])
		}
	}
	return responses[len(responses)-1], nil
}
