package txrouter

// atClusterTimeHolder is the snapshot-timestamp holder (spec.md §3,
// Data Model). A nil *atClusterTimeHolder means "not a snapshot
// transaction"; a non-nil holder with timeHasBeenSet == false means
// "snapshot transaction, timestamp not yet fixed" — these are distinct
// states (Design Notes §9), which is why this is modeled as a pointer
// to a record carrying its own optional time, not a bare optional
// ClusterTime.
type atClusterTimeHolder struct {
	timeHasBeenSet bool
	time           ClusterTime
	// stmtIdSelectedAt is the statement id current when time was
	// fixed; unset until timeHasBeenSet.
	stmtIdSelectedAt int
}

// newAtClusterTimeHolder returns an empty holder: present, but with no
// time fixed yet.
func newAtClusterTimeHolder() *atClusterTimeHolder {
	return &atClusterTimeHolder{}
}

// canChange reports whether the snapshot may still move at stmtID
// (spec.md §3 invariant 4): true if no time has been fixed yet, or it
// was fixed at exactly stmtID.
func (h *atClusterTimeHolder) canChange(stmtID int) bool {
	if h == nil {
		return false
	}
	if !h.timeHasBeenSet {
		return true
	}
	return h.stmtIdSelectedAt == stmtID
}

// set pins time at stmtID. Once set at an earlier statement, subsequent
// calls at a later statement are a caller bug; callers must check
// canChange first.
func (h *atClusterTimeHolder) set(t ClusterTime, stmtID int) {
	h.time = t
	h.stmtIdSelectedAt = stmtID
	h.timeHasBeenSet = true
}

// asReadConcernTime returns the pinned time if set, else nil, the shape
// attachTxnFieldsIfNeeded needs for sharedOptions.atClusterTime.
func (h *atClusterTimeHolder) asReadConcernTime() *ClusterTime {
	if h == nil || !h.timeHasBeenSet {
		return nil
	}
	t := h.time
	return &t
}
