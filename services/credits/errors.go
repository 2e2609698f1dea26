package credits

import (
	"errors"
	"fmt"
)

// Sentinel errors for amount validation. Use with errors.Is().
var (
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrNonFiniteAmount    = errors.New("amount must be a finite number")
	ErrAmountExceedsLimit = errors.New("amount exceeds the allowed maximum")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// AmountError carries a machine-readable code and the offending field for
// form-level display by administrative callers.
type AmountError struct {
	Code    string
	Field   string
	Message string
	err     error
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AmountError) Unwrap() error { return e.err }

func newAmountError(code, field, message string, sentinel error) *AmountError {
	return &AmountError{Code: code, Field: field, Message: message, err: sentinel}
}
