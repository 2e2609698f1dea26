package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFeeRate is returned when a requested rate is not a member of
	// the allowed enumerated set.
	ErrInvalidFeeRate = errors.New("fee rate not in the allowed set")
	// ErrInvalidReason is returned when an audited change carries an empty or
	// over-long reason.
	ErrInvalidReason = errors.New("invalid reason")
)

// FieldError carries a machine-readable code and the offending field for
// form-level display by administrative callers.
type FieldError struct {
	Code    string
	Field   string
	Message string
	err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FieldError) Unwrap() error { return e.err }
