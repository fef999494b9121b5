package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitInFlight is returned when a submit arrives while another
// attempt from the same cart is still in flight. The duplicate is a
// no-op, never a second order.
var ErrSubmitInFlight = errors.New("checkout submission already in flight")

// ErrSubmissionAbandoned is returned when the attempt was abandoned
// before its result arrived; the late result is discarded.
var ErrSubmissionAbandoned = errors.New("checkout submission abandoned")

// ValidationError reports the checkout fields that failed validation.
// It is raised before any network call or persistence write.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout submission: %s", strings.Join(e.Fields, ", "))
}

// TransportError wraps a failure to deliver the order to the store. The
// cart is preserved so the user can retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
