package txrouter

// ProcessParticipantResponse updates participant read-only state from a
// shard's reply, and may elect a recovery shard (spec.md §4.4).
func (r *Router) ProcessParticipantResponse(shardID ShardID, resp Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terminationInitiated {
		return nil
	}

	// A non-OK command status suppresses update; the caller handles
	// the error itself.
	if !resp.OK {
		return nil
	}

	p, ok := r.participants[shardID]
	if !ok {
		return nil
	}

	if p.stmtIdCreatedAt < r.latestStmtID && resp.ReadOnly == nil {
		return staleParticipantMissingReadOnlyErr()
	}

	if resp.ReadOnly == nil {
		return nil
	}

	if *resp.ReadOnly {
		switch p.readOnly {
		case ReadOnlyUnset:
			p.readOnly = ReadOnlyTrue
		case ReadOnlyTrue:
			// no change
		case ReadOnlyFalse:
			return participantWroteThenClaimedROErr()
		}
		return nil
	}

	// resp.ReadOnly reports false.
	if p.readOnly != ReadOnlyFalse {
		p.readOnly = ReadOnlyFalse
		if r.recoveryShardID == nil {
			id := shardID
			r.recoveryShardID = &id
			r.cfg.logger.Log(LogLevelDebug, "recovery shard elected", "session", r.sessionID, "shard", shardID)
		}
	}
	return nil
}
