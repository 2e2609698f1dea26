package ledger

import "errors"

var (
	// ErrInvalidFeeRate is returned when a transfer carries a rate outside [0,1).
	ErrInvalidFeeRate = errors.New("fee rate must be in [0, 1)")
	// ErrCorruptEntries is returned when stored ledger amounts are not finite
	// numbers. Reconcile refuses to trust such data.
	ErrCorruptEntries = errors.New("ledger entries contain non-finite amounts")
)
