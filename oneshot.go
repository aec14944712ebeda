package localsync

type oneshotState int8

const (
	oneshotOpen oneshotState = iota
	oneshotSent
	oneshotTaken
)

type oneshot[T any] struct {
	value    T
	state    oneshotState
	txClosed bool
	rxClosed bool
	rx       WakeSlot
	rxGone   Signal
}

// OneshotSender is the sending half of a one-shot channel.
// See [NewOneshot].
type OneshotSender[T any] struct {
	s *oneshot[T]
}

// OneshotReceiver is the receiving half of a one-shot channel.
// See [NewOneshot].
type OneshotReceiver[T any] struct {
	s *oneshot[T]
}

// NewOneshot creates a channel that transfers exactly one value from one
// sender to one receiver.
//
// Once the value has been received, the channel is done: receiving again
// reports [ErrAlreadyTaken].
//
// A one-shot channel must not be shared by more than one [Executor].
func NewOneshot[T any]() (*OneshotSender[T], *OneshotReceiver[T]) {
	s := new(oneshot[T])
	return &OneshotSender[T]{s}, &OneshotReceiver[T]{s}
}

// Send stores v in the channel and wakes the receiver.
//
// Send reports [ErrAlreadySent] if a value has already been sent, and
// [ErrClosed] if tx has been closed. If the receiver has been closed, the
// returned error matches both [ErrAlreadySent] and [ErrClosed].
//
// One should only call this method in a [Task] function.
func (tx *OneshotSender[T]) Send(v T) error {
	s := tx.s
	switch {
	case s.state != oneshotOpen:
		return ErrAlreadySent
	case s.txClosed:
		return ErrClosed
	case s.rxClosed:
		return errOneshotReceiverClosed
	}
	s.value = v
	s.state = oneshotSent
	s.rx.Wake()
	return nil
}

// Close closes tx. If no value has been sent, the receiver observes
// [ErrSenderGone].
//
// Close is idempotent.
func (tx *OneshotSender[T]) Close() {
	s := tx.s
	if s.txClosed {
		return
	}
	s.txClosed = true
	if s.state == oneshotOpen {
		s.rx.Wake()
	}
}

// IsClosed reports whether the receiver has been closed.
func (tx *OneshotSender[T]) IsClosed() bool {
	return tx.s.rxClosed
}

// Closed returns a [Task] that awaits until the receiver has been closed
// or has taken the value, and then ends.
func (tx *OneshotSender[T]) Closed() Task {
	s := tx.s
	return func(co *Coroutine) Result {
		if s.rxClosed || s.state == oneshotTaken {
			return co.End()
		}
		return co.Yield(&s.rxGone)
	}
}

// TryRecv takes the value out of the channel without suspending.
//
// TryRecv reports [ErrEmpty] if nothing has been sent yet,
// [ErrAlreadyTaken] if the value has already been received,
// [ErrSenderGone] if the sender was closed without sending, and
// [ErrClosed] if rx has been closed.
func (rx *OneshotReceiver[T]) TryRecv() (v T, err error) {
	s := rx.s
	s.rx.TakePending()
	switch {
	case s.rxClosed:
		return v, ErrClosed
	case s.state == oneshotSent:
		v, s.value = s.value, v
		s.state = oneshotTaken
		s.rxGone.Notify()
		return v, nil
	case s.state == oneshotTaken:
		return v, ErrAlreadyTaken
	case s.txClosed:
		return v, ErrSenderGone
	}
	return v, ErrEmpty
}

// Recv returns a [Task] that awaits until the value arrives or the sender
// is closed, and then continues with the task f returns.
// See [OneshotReceiver.TryRecv] for the errors f may get; f never gets
// [ErrEmpty].
//
// Only one coroutine may wait on rx at a time. A second one supersedes the
// first, which is then never woken.
func (rx *OneshotReceiver[T]) Recv(f func(v T, err error) Task) Task {
	return func(co *Coroutine) Result {
		v, err := rx.TryRecv()
		if err == ErrEmpty {
			return co.Yield(&rx.s.rx)
		}
		return proceed(co, f, v, err)
	}
}

// Close closes rx and drops any value that has not been received.
// A coroutine waiting in Recv observes [ErrClosed].
//
// Close is idempotent.
func (rx *OneshotReceiver[T]) Close() {
	s := rx.s
	if s.rxClosed {
		return
	}
	var zero T
	s.rxClosed = true
	s.value = zero
	if s.rx.Registered() {
		s.rx.Wake()
	}
	s.rx.reset()
	s.rxGone.Notify()
}
