package txrouter

import "context"

// ShardID names a backend shard, e.g. as returned by the shard registry.
type ShardID string

// SessionID is the opaque, comparable identity a session store indexes
// routers by. It is not part of spec.md's data model (session identity
// belongs to the external session store) but is needed at this
// package's boundary.
type SessionID [16]byte

// ClusterTime is the logical timestamp the cluster clock source hands
// back, and the type atClusterTime pins once selected.
type ClusterTime struct {
	// Ordinal is a monotonically non-decreasing cluster-wide counter.
	// Two ClusterTime values compare by Ordinal alone.
	Ordinal uint64
}

// After reports whether c happened strictly after other.
func (c ClusterTime) After(other ClusterTime) bool { return c.Ordinal > other.Ordinal }

func maxClusterTime(a, b ClusterTime) ClusterTime {
	if a.After(b) {
		return a
	}
	return b
}

// ReadConcernLevel is the set of read-concern levels spec.md §3 allows.
type ReadConcernLevel int8

const (
	ReadConcernUnset ReadConcernLevel = iota
	ReadConcernLocal
	ReadConcernMajority
	ReadConcernSnapshot
)

func (l ReadConcernLevel) String() string {
	switch l {
	case ReadConcernLocal:
		return "local"
	case ReadConcernMajority:
		return "majority"
	case ReadConcernSnapshot:
		return "snapshot"
	default:
		return "unset"
	}
}

// ReadConcern is the read-concern declared by the first statement of a
// transaction; frozen for the transaction's life (spec.md §3).
type ReadConcern struct {
	Level ReadConcernLevel
	// AfterClusterTime is the client-supplied lower bound a snapshot
	// transaction's timestamp must be at least as new as (spec.md §4.2).
	AfterClusterTime *ClusterTime
	// AtClusterTime is filled in once the router has pinned a snapshot
	// for this transaction; absent on every other level.
	AtClusterTime *ClusterTime
}

// Action is the statement role spec.md §4.1 dispatches on.
type Action int8

const (
	ActionStart Action = iota
	ActionContinue
	ActionCommit
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionContinue:
		return "continue"
	case ActionCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Command is the outbound per-shard payload the router decorates in
// AttachTxnFieldsIfNeeded (spec.md §4.3, §6).
type Command struct {
	Name             string
	TxnNumber        int64
	Autocommit       bool
	StartTransaction bool
	ReadConcern      *ReadConcern
	Coordinator      bool
	// Participants carries the explicit list attached to a
	// coordinateCommitTransaction hand-off (spec.md §4.6).
	Participants []ShardID
	// WriteConcern is set on the explicit AbortTransaction broadcast
	// (spec.md §4.7) and unset on the implicit, best-effort one.
	WriteConcern bool
	// Body is the caller's opaque query/command payload, untouched by
	// decoration.
	Body any
}

// isTransactionControlCommand reports whether name is one of the
// control commands spec.md §4.3/§6 forbids a read-concern on and never
// marks as starting a transaction.
func isTransactionControlCommand(name string) bool {
	switch name {
	case "abortTransaction", "commitTransaction", "prepareTransaction", "coordinateCommitTransaction":
		return true
	default:
		return false
	}
}

// idempotentUnderTxn is the command allow-list spec.md §4.5 names as
// safe to silently retry on a stale shard/db error even past the first
// statement, because writes via these commands are disallowed in a
// transaction.
func idempotentUnderTxn(name string) bool {
	switch name {
	case "aggregate", "distinct", "find", "getMore", "killCursors":
		return true
	default:
		return false
	}
}

// Response is the per-shard reply handed to ProcessParticipantResponse
// (spec.md §4.4).
type Response struct {
	OK bool
	// ReadOnly is nil when the shard's reply carries no readOnly marker
	// at all (distinct from reporting false).
	ReadOnly          *bool
	ErrorCode         string
	WriteConcernError bool
	Body              any
}

func readOnlyPtr(b bool) *bool { return &b }

// RecoveryToken is the opaque token spec.md §4.8 hands back to the
// client so a later router can learn the transaction's outcome.
type RecoveryToken struct {
	RecoveryShardID *ShardID
}

// IsEmpty reports whether the token carries no recovery shard, the
// read-only-transaction case spec.md §4.8 describes.
func (t RecoveryToken) IsEmpty() bool { return t.RecoveryShardID == nil }

// ClockSource is the external "logical-clock source" collaborator
// spec.md §1 names but scopes out of the router's own logic.
type ClockSource interface {
	ClusterTime(ctx context.Context) (ClusterTime, error)
}

// ShardTransport is the external "send command to shards" collaborator
// spec.md §1 names but scopes out of the router's own logic: the
// router only decides what to send and to whom, never how the bytes
// get there.
type ShardTransport interface {
	Send(ctx context.Context, shardID ShardID, cmd Command) (Response, error)
}
