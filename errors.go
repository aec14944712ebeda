package localsync

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when the other end of a channel, or the handle
	// used for the operation itself, has been closed.
	ErrClosed = errors.New("localsync: channel closed")

	// ErrEndOfStream is returned by a receive when every sender has been
	// closed and all buffered values have been received.
	ErrEndOfStream = errors.New("localsync: end of stream")

	// ErrAlreadySent is returned by a second send on a one-shot channel.
	ErrAlreadySent = errors.New("localsync: value already sent")

	// ErrAlreadyTaken is returned by a receive on a one-shot channel whose
	// value has already been received.
	ErrAlreadyTaken = errors.New("localsync: value already taken")

	// ErrSenderGone is returned by a receive on a one-shot channel whose
	// sender was closed without sending.
	ErrSenderGone = errors.New("localsync: sender closed without sending")

	// ErrEmpty is returned by a non-blocking receive that would suspend.
	ErrEmpty = errors.New("localsync: channel empty")

	// ErrFull is returned by a non-blocking send that would suspend.
	ErrFull = errors.New("localsync: channel full")

	// ErrLagged is matched by every [*LaggedError].
	ErrLagged = errors.New("localsync: receiver lagged")
)

// LaggedError is returned by a broadcast receive when the receiver fell
// behind the retained window. The receiver has been moved forward to the
// oldest retained message; receiving again continues from there.
type LaggedError struct {
	Skipped uint64 // The number of messages the receiver missed.
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("localsync: receiver lagged behind by %d messages", e.Skipped)
}

// Is reports whether target is [ErrLagged].
func (e *LaggedError) Is(target error) bool {
	return target == ErrLagged
}

// multiError is an error that matches every error in errs.
type multiError struct {
	msg  string
	errs []error
}

func (e *multiError) Error() string {
	return e.msg
}

func (e *multiError) Unwrap() []error {
	return e.errs
}

var errOneshotReceiverClosed = &multiError{
	msg:  "localsync: send on one-shot channel with closed receiver",
	errs: []error{ErrAlreadySent, ErrClosed},
}
