package txrouter

import "time"

// ParticipantReport is one shard's entry in a Report (spec.md §4.9).
type ParticipantReport struct {
	ShardID     ShardID
	Coordinator bool
	ReadOnly    ReadOnlyState
}

// Report is the structured state dump spec.md §4.9 describes, used for
// live monitoring and the slow-transaction log.
type Report struct {
	SessionID       SessionID
	TxnNumber       int64
	ReadConcern     ReadConcern
	Participants    []ParticipantReport
	CommitType      CommitType
	AtClusterTime   *ClusterTime
	Active          bool
	OpenDuration    time.Duration
	ActiveDuration  time.Duration
	InactiveDuration time.Duration
	CommitDuration  time.Duration
}

// ReportState produces a Report for monitoring or slow-transaction
// logging (spec.md §4.9, §6 "reportState(builder, active)"). active
// reflects whether the caller currently holds the session checked out.
func (r *Router) ReportState(active bool) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := Report{
		SessionID:     r.sessionID,
		TxnNumber:     r.txnNumber,
		ReadConcern:   r.readConcern,
		CommitType:    r.commitType,
		AtClusterTime: r.atClusterTime.asReadConcernTime(),
		Active:        active,
	}
	for _, id := range r.participantOrder {
		p := r.participants[id]
		rep.Participants = append(rep.Participants, ParticipantReport{
			ShardID:     id,
			Coordinator: p.isCoordinator,
			ReadOnly:    p.readOnly,
		})
	}
	rep.OpenDuration, rep.ActiveDuration, rep.InactiveDuration, rep.CommitDuration = r.timing.durations()
	return rep
}

// IsSlow reports whether rep's open duration exceeds threshold, the same
// comparison checkSlowTransactionLocked makes against the router's own
// configured threshold.
func (rep Report) IsSlow(threshold time.Duration) bool {
	return rep.OpenDuration > threshold
}

// checkSlowTransactionLocked compares the transaction's open duration
// against the router's own configured slow-transaction threshold
// (spec.md §4.9 "the slow-transaction log emitted when total duration
// exceeds the configured slow-threshold") and, if it's exceeded, emits
// both the log line and the metric. Caller must hold mu and must only
// call this once the transaction's lifecycle is actually finalized
// (endTime set), not while a commit outcome is still unknown.
func (r *Router) checkSlowTransactionLocked() {
	if r.cfg.slowTransactionThreshold <= 0 {
		return
	}
	open, _, _, _ := r.timing.durations()
	if open <= r.cfg.slowTransactionThreshold {
		return
	}
	r.cfg.metrics.SlowTransaction(open)
	r.cfg.logger.Log(LogLevelWarn, "slow transaction", "session", r.sessionID, "duration", open, "txnNumber", r.txnNumber)
}
