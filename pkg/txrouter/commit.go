package txrouter

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/shardmux/txrouter/pkg/txrouter/rerr"
)

// commitSnapshot is the subset of Router state CommitTransaction needs,
// captured under the lock once so the rest of the commit logic (which
// suspends on network I/O) never touches Router fields without it.
type commitSnapshot struct {
	isRecoveringCommit bool
	participants       map[ShardID]*Participant
	order              []ShardID
	coordinatorID      *ShardID
	txnNumber          int64
	transport          ShardTransport
}

// computeCommitType is the pure, table-driven classifier Design Notes
// §9 calls for: a function of (isRecoveringCommit, participant count,
// notReadOnly count, presence of any unset), with no I/O.
func computeCommitType(s commitSnapshot) CommitType {
	if s.isRecoveringCommit {
		return CommitTypeRecoverWithToken
	}
	n := len(s.order)
	if n == 0 {
		return CommitTypeNoShards
	}
	if n == 1 {
		return CommitTypeSingleShard
	}
	notReadOnly := 0
	for _, id := range s.order {
		if s.participants[id].readOnly == ReadOnlyFalse {
			notReadOnly++
		}
	}
	switch {
	case notReadOnly == 0:
		return CommitTypeReadOnly
	case notReadOnly == 1:
		return CommitTypeSingleWriteShard
	default:
		return CommitTypeTwoPhaseCommit
	}
}

// CommitTransaction drives the current transaction's commit protocol
// to completion (spec.md §4.6).
func (r *Router) CommitTransaction(ctx context.Context, token *RecoveryToken) (Response, error) {
	r.mu.Lock()
	r.terminationInitiated = true
	r.timing.markCommitStart()

	participants := make(map[ShardID]*Participant, len(r.participants))
	for id, p := range r.participants {
		cp := *p
		participants[id] = &cp
	}
	snap := commitSnapshot{
		isRecoveringCommit: r.isRecoveringCommit,
		participants:       participants,
		order:              append([]ShardID(nil), r.participantOrder...),
		coordinatorID:      r.coordinatorID,
		txnNumber:          r.txnNumber,
		transport:          r.cfg.transport,
	}
	ct := computeCommitType(snap)
	r.commitType = ct
	r.mu.Unlock()

	if ct != CommitTypeNoShards && ct != CommitTypeRecoverWithToken {
		for _, id := range snap.order {
			if snap.participants[id].readOnly == ReadOnlyUnset {
				return Response{}, r.finishCommit(NoSuchTransactionErr())
			}
		}
	}

	var resp Response
	var err error

	switch ct {
	case CommitTypeRecoverWithToken:
		resp, err = r.commitRecoverWithToken(ctx, token, snap)
	case CommitTypeNoShards:
		resp = Response{OK: true}
	case CommitTypeSingleShard:
		resp, err = sendAndClassify(ctx, snap.transport, snap.order[0], commitCmd(snap.txnNumber))
	case CommitTypeReadOnly:
		resp, err = directCommitMulti(ctx, snap.transport, snap.order, snap.txnNumber)
	case CommitTypeSingleWriteShard:
		resp, err = r.commitSingleWriteShard(ctx, snap)
	case CommitTypeTwoPhaseCommit:
		resp, err = r.commitTwoPhase(ctx, snap)
	}

	return resp, r.finishCommit(err)
}

func commitCmd(txnNumber int64) Command {
	return Command{Name: "commitTransaction", TxnNumber: txnNumber, Autocommit: false}
}

func (r *Router) commitRecoverWithToken(ctx context.Context, token *RecoveryToken, snap commitSnapshot) (Response, error) {
	if token == nil || token.IsEmpty() {
		return Response{}, InvalidOptionsErr("recovery token must carry a recoveryShardId")
	}
	return sendAndClassify(ctx, snap.transport, *token.RecoveryShardID, Command{
		Name:         "coordinateCommitTransaction",
		TxnNumber:    snap.txnNumber,
		Autocommit:   false,
		Participants: nil,
	})
}

// commitSingleWriteShard commits all read-only participants first
// (they hold no locks to coordinate), then the single write shard, per
// spec.md §4.6.
func (r *Router) commitSingleWriteShard(ctx context.Context, snap commitSnapshot) (Response, error) {
	var readOnly, writeShard []ShardID
	for _, id := range snap.order {
		if snap.participants[id].readOnly == ReadOnlyFalse {
			writeShard = append(writeShard, id)
		} else {
			readOnly = append(readOnly, id)
		}
	}

	if len(readOnly) > 0 {
		resp, err := directCommitMulti(ctx, snap.transport, readOnly, snap.txnNumber)
		if err != nil || !resp.OK || resp.WriteConcernError {
			return resp, err
		}
	}
	return sendAndClassify(ctx, snap.transport, writeShard[0], commitCmd(snap.txnNumber))
}

// commitTwoPhase hands off to the coordinator with the explicit
// participant list, per spec.md §4.6.
func (r *Router) commitTwoPhase(ctx context.Context, snap commitSnapshot) (Response, error) {
	return sendAndClassify(ctx, snap.transport, *snap.coordinatorID, Command{
		Name:         "coordinateCommitTransaction",
		TxnNumber:    snap.txnNumber,
		Autocommit:   false,
		Participants: snap.order,
	})
}

// sendAndClassify sends cmd and, on a successful round trip, classifies
// the response the same way directCommitMulti/directAbortMulti do: a
// non-OK or write-concern-error response becomes a non-nil err so
// finishCommit never mistakes it for a successful commit.
func sendAndClassify(ctx context.Context, transport ShardTransport, shardID ShardID, cmd Command) (Response, error) {
	resp, err := transport.Send(ctx, shardID, cmd)
	if err != nil {
		return resp, err
	}
	return resp, responseToError(resp)
}

// directCommitMulti sends commitTransaction to every shard in ids
// concurrently and applies spec.md §4.6's "first error response, else
// last response" rule, where "last" means last in ids's order.
func directCommitMulti(ctx context.Context, transport ShardTransport, ids []ShardID, txnNumber int64) (Response, error) {
	responses := make([]Response, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			resp, err := transport.Send(ctx, id, commitCmd(txnNumber))
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

func responseToError(resp Response) error {
	if resp.OK && !resp.WriteConcernError {
		return nil
	}
	if resp.WriteConcernError {
		return &rerr.Error{Code: rerr.ErrWriteConcernFailed.Code, Retriable: true}
	}
	return &rerr.Error{Code: resp.ErrorCode}
}

// finishCommit decides whether err leaves the commit in the unknown
// state (no lifecycle update) or is a terminal success/failure
// (spec.md §4.6/§7), updating timing/metrics/abort cause accordingly,
// and returns err unchanged so CommitTransaction can propagate it.
func (r *Router) finishCommit(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		r.onSuccessfulCommitLocked()
		return nil
	}
	if rerr.IsCommitUnknown(err) {
		r.cfg.metrics.CommitUnknown()
		r.cfg.logger.Log(LogLevelWarn, "commit outcome unknown", "session", r.sessionID, "err", err)
		return err
	}
	r.onNonRetryableCommitErrorLocked(err)
	return err
}

func (r *Router) onSuccessfulCommitLocked() {
	r.timing.markEnd()
	r.cfg.metrics.TransactionCommitted(r.commitType)
	r.cfg.logger.Log(LogLevelInfo, "transaction committed", "session", r.sessionID, "commitType", r.commitType.String())
	r.checkSlowTransactionLocked()
}

func (r *Router) onNonRetryableCommitErrorLocked(err error) {
	r.timing.markEnd()
	if r.abortCause == "" {
		r.abortCause = codeStringOf(err)
	}
	r.cfg.metrics.TransactionAborted(r.abortCause)
	r.cfg.logger.Log(LogLevelInfo, "transaction commit failed, treating as aborted", "session", r.sessionID, "cause", r.abortCause)
	r.checkSlowTransactionLocked()
}

func codeStringOf(err error) string {
	var e *rerr.Error
	if errors.As(err, &e) {
		return e.CodeString()
	}
	return err.Error()
}
