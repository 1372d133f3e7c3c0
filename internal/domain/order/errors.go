package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ValidationError reports input the caller can correct: a malformed line
// item, an empty order or an unknown status.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Sentinel validation errors. Their messages are shown to API clients as is.
var (
	ErrEmptyOrder      = &ValidationError{msg: "The order must have at least one item"}
	ErrInvalidQuantity = &ValidationError{msg: "Quantity must be greater than 0"}
	ErrInvalidPrice    = &ValidationError{msg: "Price must not be negative"}
)

// ErrNotFound is returned when the referenced order does not exist.
var ErrNotFound = errors.New("Order not found")

// UnknownStatusError reports a status string outside of the known set.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("Unknown order status: %s", e.Status)
}

// InvalidTransitionError indicates a status change the state machine does
// not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot complete an order with status: %s", e.From)
}

// IsClientError reports whether err is one of the caller-correctable kinds:
// validation, not found or invalid transition.
func IsClientError(err error) bool {
	var (
		vErr *ValidationError
		sErr *UnknownStatusError
		tErr *InvalidTransitionError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &sErr), errors.As(err, &tErr):
		return true
	case errors.Is(err, ErrNotFound):
		return true
	default:
		return false
	}
}
