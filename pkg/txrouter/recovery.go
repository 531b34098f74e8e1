package txrouter

// AppendRecoveryToken returns the recovery token for the current
// transaction (spec.md §4.8): empty for a read-only transaction (no
// write participant was ever observed), carrying the stable recovery
// shard id otherwise.
func (r *Router) AppendRecoveryToken() RecoveryToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recoveryShardID == nil {
		return RecoveryToken{}
	}
	id := *r.recoveryShardID
	return RecoveryToken{RecoveryShardID: &id}
}
