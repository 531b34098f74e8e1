// Package txrouter implements the per-session transaction router state
// machine: participant bookkeeping, snapshot-time selection, statement
// retry policy, commit protocol selection, and abort.
package txrouter

import (
	"context"
	"sync"
)

// uninitializedTxnNumber is the sentinel stored before any transaction
// has begun on a session (spec.md §3).
const uninitializedTxnNumber int64 = -1

// CommitType is the commit protocol a transaction resolves to
// (spec.md §3, §4.6).
type CommitType int8

const (
	CommitTypeNotInitiated CommitType = iota
	CommitTypeNoShards
	CommitTypeSingleShard
	CommitTypeSingleWriteShard
	CommitTypeReadOnly
	CommitTypeTwoPhaseCommit
	CommitTypeRecoverWithToken
)

func (c CommitType) String() string {
	switch c {
	case CommitTypeNoShards:
		return "noShards"
	case CommitTypeSingleShard:
		return "singleShard"
	case CommitTypeSingleWriteShard:
		return "singleWriteShard"
	case CommitTypeReadOnly:
		return "readOnly"
	case CommitTypeTwoPhaseCommit:
		return "twoPhaseCommit"
	case CommitTypeRecoverWithToken:
		return "recoverWithToken"
	default:
		return "notInitiated"
	}
}

// ClientInfo is the last observed client descriptor, carried only for
// reporting (spec.md §3).
type ClientInfo struct {
	Application string
	Addr        string
}

// Router is the per-session transaction router (spec.md §3). It is
// safe for one active (checked-out) caller plus concurrent observer
// reads, all serialized through mu, matching spec.md §5.
type Router struct {
	cfg cfg

	sessionID SessionID

	mu sync.Mutex

	txnNumber     int64
	readConcern   ReadConcern
	atClusterTime *atClusterTimeHolder

	participants  map[ShardID]*Participant
	participantOrder []ShardID // insertion order, for deterministic fan-out and reporting

	coordinatorID   *ShardID
	recoveryShardID *ShardID

	commitType          CommitType
	isRecoveringCommit  bool
	terminationInitiated bool

	firstStmtID  int
	latestStmtID int

	abortCause string

	timing timingStats

	lastClientInfo ClientInfo
}

// New constructs a Router for sessionID with no transaction yet begun.
func New(sessionID SessionID, opts ...Opt) *Router {
	c := defaultCfg()
	for _, o := range opts {
		o.apply(&c)
	}
	r := &Router{
		cfg:       c,
		sessionID: sessionID,
	}
	r.resetLocked(uninitializedTxnNumber)
	return r
}

// SessionID returns the session this router belongs to.
func (r *Router) SessionID() SessionID { return r.sessionID }

// resetLocked clears all per-transaction state and sets txnNumber to n
// (spec.md §4.1 "Reset"). Caller must hold mu.
func (r *Router) resetLocked(n int64) {
	r.txnNumber = n
	r.readConcern = ReadConcern{}
	r.atClusterTime = nil
	r.participants = make(map[ShardID]*Participant)
	r.participantOrder = nil
	r.coordinatorID = nil
	r.recoveryShardID = nil
	r.commitType = CommitTypeNotInitiated
	r.isRecoveringCommit = false
	r.terminationInitiated = false
	r.firstStmtID = 0
	r.latestStmtID = 0
	r.abortCause = ""
	r.timing = newTimingStats(r.cfg.now)
}

// BeginOrContinue arbitrates a new statement against the stored
// transaction number (spec.md §4.1).
func (r *Router) BeginOrContinue(ctx context.Context, txnNumber int64, action Action, rc *ReadConcern, info ClientInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case txnNumber < r.txnNumber:
		return TransactionTooOldErr()

	case txnNumber == r.txnNumber:
		switch action {
		case ActionStart:
			return ConflictingOperationInProgressErr()
		case ActionContinue:
			if rc != nil && rc.Level != ReadConcernUnset {
				return InvalidOptionsErr("continue statement must not carry a read concern")
			}
			r.latestStmtID++
		case ActionCommit:
			r.latestStmtID++
		}

	default: // txnNumber > r.txnNumber
		switch action {
		case ActionStart:
			level := ReadConcernUnset
			if rc != nil {
				level = rc.Level
			}
			if !validStartLevel(level) {
				return InvalidOptionsErr("unsupported read concern level for a new transaction")
			}
			r.resetLocked(txnNumber)
			if rc != nil {
				r.readConcern = *rc
			}
			if r.readConcern.Level == ReadConcernSnapshot {
				r.atClusterTime = newAtClusterTimeHolder()
			}
			r.cfg.metrics.TransactionStarted(false)
			r.cfg.logger.Log(LogLevelInfo, "new transaction", "session", r.sessionID, "txnNumber", txnNumber)

		case ActionContinue:
			return NoSuchTransactionErr()

		case ActionCommit:
			r.resetLocked(txnNumber)
			r.isRecoveringCommit = true
			r.cfg.metrics.TransactionStarted(true)
			r.cfg.logger.Log(LogLevelInfo, "new transaction (commit recovery)", "session", r.sessionID, "txnNumber", txnNumber)
		}
	}

	r.lastClientInfo = info
	r.timing.markActive()
	return nil
}

func validStartLevel(l ReadConcernLevel) bool {
	switch l {
	case ReadConcernUnset, ReadConcernLocal, ReadConcernMajority, ReadConcernSnapshot:
		return true
	default:
		return false
	}
}

// SetDefaultAtClusterTime selects and pins the snapshot timestamp for
// the current statement (spec.md §4.2), a no-op unless the transaction
// is snapshot-isolated and the snapshot can still change.
func (r *Router) SetDefaultAtClusterTime(ctx context.Context) error {
	r.mu.Lock()
	holder := r.atClusterTime
	stmtID := r.latestStmtID
	afterClusterTime := r.readConcern.AfterClusterTime
	clock := r.cfg.clock
	r.mu.Unlock()

	if holder == nil || !holder.canChange(stmtID) {
		return nil
	}
	if clock == nil {
		return nil
	}

	current, err := clock.ClusterTime(ctx)
	if err != nil {
		return err
	}
	chosen := current
	if afterClusterTime != nil {
		chosen = maxClusterTime(current, *afterClusterTime)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under lock: another goroutine may have pinned it first,
	// or the statement may have advanced while we were off reading the
	// clock (an operation-level deadline applies, but no lock is held
	// across the suspension point per spec.md §5).
	if r.atClusterTime == nil || !r.atClusterTime.canChange(r.latestStmtID) {
		return nil
	}
	r.atClusterTime.set(chosen, r.latestStmtID)
	return nil
}

// Stash marks the session inactive, called when it checks back in to
// the session store (spec.md §6).
func (r *Router) Stash() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timing.markInactive()
}

// TxnNumber returns the currently stored transaction number.
func (r *Router) TxnNumber() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txnNumber
}

// IsRecoveringCommit reports whether the first action seen for this
// transaction was a commit.
func (r *Router) IsRecoveringCommit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRecoveringCommit
}
