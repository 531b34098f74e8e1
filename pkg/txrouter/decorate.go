package txrouter

// AttachTxnFieldsIfNeeded decorates cmd for shardID, creating the
// Participant on first contact, per spec.md §4.3.
func (r *Router) AttachTxnFieldsIfNeeded(shardID ShardID, cmd Command) Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.participants[shardID]
	if !exists {
		p = newParticipant(len(r.participantOrder) == 0, r.latestStmtID, sharedOptions{
			txnNumber:     r.txnNumber,
			readConcern:   r.readConcern,
			atClusterTime: r.atClusterTime.asReadConcernTime(),
		})
		r.participants[shardID] = p
		r.participantOrder = append(r.participantOrder, shardID)
		if p.isCoordinator {
			id := shardID
			r.coordinatorID = &id
		}
		r.cfg.logger.Log(LogLevelDebug, "adding participant", "session", r.sessionID, "shard", shardID, "coordinator", p.isCoordinator)
	}

	out := cmd
	if out.TxnNumber == 0 {
		out.TxnNumber = r.txnNumber
	} else if out.TxnNumber != r.txnNumber {
		panic("txrouter: AttachTxnFieldsIfNeeded: cmd.TxnNumber inconsistent with the transaction's own txnNumber")
	}
	if out.Autocommit {
		panic("txrouter: AttachTxnFieldsIfNeeded: cmd.Autocommit must never be true inside a transaction")
	}

	control := isTransactionControlCommand(cmd.Name)
	firstForParticipant := !exists

	switch {
	case firstForParticipant && !control:
		out.StartTransaction = true
		rc := p.shared.readConcern
		if p.shared.atClusterTime != nil {
			at := *p.shared.atClusterTime
			rc.AtClusterTime = &at
			rc.AfterClusterTime = nil
		}
		out.ReadConcern = &rc

	case !firstForParticipant && !control:
		if out.ReadConcern != nil {
			panic("txrouter: AttachTxnFieldsIfNeeded: a non-first statement for a participant must not carry a read concern")
		}

	default: // control command: never carries a read concern
		out.ReadConcern = nil
	}

	if p.isCoordinator {
		out.Coordinator = true
	}

	return out
}
