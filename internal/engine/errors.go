package engine

import (
	"errors"
	"fmt"
)

// Input validation and funds errors. Detected before any broadcast; the
// caller returns to the input state and may retry with corrected input.
var (
	ErrMissingRecipient   = errors.New("recipient address is required")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrInvalidAddress     = errors.New("invalid recipient address")
	ErrInsufficientFunds  = errors.New("insufficient funds for amount plus fee")
	ErrUnsupportedNetwork = errors.New("transfers are not supported on this network")
)

// SubmissionError wraps a failure from the RPC or signing layer, carrying
// the provider's error code when one was supplied. Never fatal; the
// submission returns to the input state.
type SubmissionError struct {
	Code int // provider-supplied code, 0 when absent
	Err  error
}

func (e *SubmissionError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("submission failed (code %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// coder matches error types that expose a numeric provider code, such as
// go-ethereum's rpc.Error.
type coder interface {
	ErrorCode() int
}

// wrapSubmission normalizes an RPC/signing failure into a SubmissionError.
func wrapSubmission(err error) error {
	if err == nil {
		return nil
	}
	se := &SubmissionError{Err: err}
	var c coder
	if errors.As(err, &c) {
		se.Code = c.ErrorCode()
	}
	return se
}
