package txrouter

import "github.com/shardmux/txrouter/pkg/txrouter/rerr"

// The following build fresh errors carrying the codes of rerr's
// package-level sentinels, some with a call-site message, keeping callers in this package from having to import rerr
// directly for the common cases. Error() still reports the bare code
// when no message is supplied, and errors.Is(err, rerr.NoSuchTransaction)
// continues to match because Error.Is compares on Code alone.

func TransactionTooOldErr() error { return &rerr.Error{Code: rerr.TransactionTooOld.Code, Retriable: false} }

func ConflictingOperationInProgressErr() error {
	return &rerr.Error{Code: rerr.ConflictingOperationInProgress.Code, Retriable: false}
}

func NoSuchTransactionErr() error {
	return &rerr.Error{Code: rerr.NoSuchTransaction.Code, Retriable: false}
}

func InvalidOptionsErr(msg string) error {
	return &rerr.Error{Code: rerr.InvalidOptions.Code, Message: msg, Retriable: false}
}

func IllegalOperationErr(msg string) error {
	return &rerr.Error{Code: rerr.IllegalOperation.Code, Message: msg, Retriable: false}
}

func staleParticipantMissingReadOnlyErr() error {
	return &rerr.Error{Code: rerr.ErrStaleParticipantMissingReadOnly.Code, Retriable: false}
}

func participantWroteThenClaimedROErr() error {
	return &rerr.Error{Code: rerr.ErrParticipantWroteThenClaimedRO.Code, Retriable: false}
}
