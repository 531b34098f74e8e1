package txrouter

// ReadOnlyState is the per-participant tri-state (spec.md §3/§4.4).
// Transitions out of unset are permitted either way. A ReadOnlyTrue
// participant becomes ReadOnlyFalse when a later response reports a
// write; a ReadOnlyFalse participant never goes back to read-only (a
// response claiming so is error 51113).
type ReadOnlyState int8

const (
	ReadOnlyUnset ReadOnlyState = iota
	ReadOnlyTrue
	ReadOnlyFalse
)

func (s ReadOnlyState) String() string {
	switch s {
	case ReadOnlyTrue:
		return "readOnly"
	case ReadOnlyFalse:
		return "notReadOnly"
	default:
		return "unset"
	}
}

// sharedOptions is the per-participant frozen snapshot of the
// transaction's defining options (spec.md §3).
type sharedOptions struct {
	txnNumber     int64
	readConcern   ReadConcern
	atClusterTime *ClusterTime
}

// Participant is the per-shard record spec.md §3/§4.3 defines.
type Participant struct {
	isCoordinator   bool
	readOnly        ReadOnlyState
	stmtIdCreatedAt int
	shared          sharedOptions
}

// IsCoordinator reports whether this participant was the first added to
// the transaction and so carries the coordinator marker.
func (p *Participant) IsCoordinator() bool { return p.isCoordinator }

// ReadOnly reports the participant's current tri-state.
func (p *Participant) ReadOnly() ReadOnlyState { return p.readOnly }

// StmtIDCreatedAt reports the statement id current when this
// participant was first contacted.
func (p *Participant) StmtIDCreatedAt() int { return p.stmtIdCreatedAt }

func newParticipant(isCoordinator bool, stmtID int, opts sharedOptions) *Participant {
	return &Participant{
		isCoordinator:   isCoordinator,
		readOnly:        ReadOnlyUnset,
		stmtIdCreatedAt: stmtID,
		shared:          opts,
	}
}
