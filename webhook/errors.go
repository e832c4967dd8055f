package webhook

import (
	"errors"
	"fmt"

	"github.com/oracle-dashboard/webhooks/payment"
)

// Predefined errors.
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrDecode           = errors.New("failed to decode webhook payload")
	ErrUnknownProvider  = errors.New("unknown payment provider")
)

// DecodeError describes a payload that could not be turned into a payment event.
type DecodeError struct {
	Provider payment.Provider
	Reason   string
	Err      error
}

// NewDecodeError returns a decode error for the given provider.
func NewDecodeError(provider payment.Provider, reason string, err error) *DecodeError {
	return &DecodeError{Provider: provider, Reason: reason, Err: err}
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", ErrDecode, e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s: %v", ErrDecode, e.Provider, e.Reason, e.Err)
}

// Is makes errors.Is(err, ErrDecode) work for every decode error.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
