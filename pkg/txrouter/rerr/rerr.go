// Package rerr holds the typed error values the router surfaces to its
// callers and the participant protocol violations it raises against
// itself, modeled on the teacher's kerr.Error / errors.As idiom.
package rerr

import (
	"errors"
	"fmt"
)

// Error is a named, retriability-tagged router error. Callers compare
// against the package-level sentinels with errors.Is, or unwrap with
// errors.As to inspect Retriable.
type Error struct {
	Code      string
	Message   string
	Retriable bool
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeString returns the bare error code, the way a shard response's
// codeString field would report it.
func (e *Error) CodeString() string { return e.Code }

// Is lets errors.Is(err, CodeSentinel) match on code alone, ignoring
// Message, so a wrapped/annotated instance still compares equal to the
// sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newErr(code string, retriable bool) *Error {
	return &Error{Code: code, Retriable: retriable}
}

// Client-protocol errors (spec §6, §7): surfaced directly, never retried
// by the router itself.
var (
	TransactionTooOld              = newErr("TransactionTooOld", false)
	ConflictingOperationInProgress = newErr("ConflictingOperationInProgress", false)
	NoSuchTransaction               = newErr("NoSuchTransaction", false)
	InvalidOptions                  = newErr("InvalidOptions", false)
	IllegalOperation                = newErr("IllegalOperation", false)
)

// Internal protocol assertions a participant response can trigger
// (spec §4.4). These are fatal: the operation should be killed, not
// retried.
var (
	ErrStaleParticipantMissingReadOnly = newErr("51112", false) // pre-existing participant responded without a readOnly marker
	ErrParticipantWroteThenClaimedRO   = newErr("51113", false) // a shard that wrote cannot later claim read-only
)

// Commit-outcome classification helpers (spec §4.6, §7).
var (
	ErrRetryableWrite      = newErr("RetryableWriteError", true)
	ErrExceededTimeLimit   = newErr("ExceededTimeLimit", true)
	ErrWriteConcernFailed  = newErr("WriteConcernFailed", true)
)

// IsCommitUnknown reports whether err, returned from a commit attempt,
// leaves the transaction's outcome unknown (client may retry commit)
// per spec §4.6/§7: a retryable-write error, an exceeded-time-limit
// error, TransactionTooOld, or a write-concern failure.
func IsCommitUnknown(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range []*Error{ErrRetryableWrite, ErrExceededTimeLimit, TransactionTooOld, ErrWriteConcernFailed} {
		if asErr(err, sentinel) {
			return true
		}
	}
	return false
}

func asErr(err error, sentinel *Error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == sentinel.Code
}
