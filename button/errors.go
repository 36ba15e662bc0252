package button

import (
	"errors"
	"fmt"
)

// ErrInvalidSchedule means the installation's configuration can never
// produce a next fire time (empty weekday mask, degenerate interval).
var ErrInvalidSchedule = errors.New("schedule configuration can never fire")

// ErrAlreadyResolved means a click referenced a message that is not the
// live pending one. It is a benign no-op for the caller.
var ErrAlreadyResolved = errors.New("message already resolved")

// DeliveryError wraps a failed outbound Slack call. The scheduler retries
// these on the next tick instead of propagating them.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("slack delivery failed during %s: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
