package localsync

type unbounded[T any] struct {
	buf      deque[T]
	senders  int
	rxClosed bool
	rx       WakeSlot
}

// UnboundedSender is a sending half of an unbounded multi-producer,
// single-consumer channel. See [NewUnbounded].
type UnboundedSender[T any] struct {
	s      *unbounded[T]
	closed bool
}

// UnboundedReceiver is the receiving half of an unbounded multi-producer,
// single-consumer channel. See [NewUnbounded].
type UnboundedReceiver[T any] struct {
	s *unbounded[T]
}

// NewUnbounded creates a FIFO channel with no limit on buffered values.
// Sending never waits.
//
// When every sender has been closed, the receiver still gets every value
// that was sent, and then [ErrEndOfStream].
//
// An Unbounded channel must not be shared by more than one [Executor].
func NewUnbounded[T any]() (*UnboundedSender[T], *UnboundedReceiver[T]) {
	s := &unbounded[T]{senders: 1}
	return &UnboundedSender[T]{s: s}, &UnboundedReceiver[T]{s: s}
}

// Clone creates another sender of the same channel.
// The channel ends only after every sender has been closed.
//
// Panics if tx has been closed.
func (tx *UnboundedSender[T]) Clone() *UnboundedSender[T] {
	if tx.closed {
		panic("localsync(Unbounded): clone of closed sender")
	}
	tx.s.senders++
	return &UnboundedSender[T]{s: tx.s}
}

// Send appends v to the channel and wakes the receiver.
// Send reports [ErrClosed] if the receiver or tx has been closed.
//
// One should only call this method in a [Task] function.
func (tx *UnboundedSender[T]) Send(v T) error {
	s := tx.s
	if tx.closed || s.rxClosed {
		return ErrClosed
	}
	s.buf.PushBack(v)
	s.rx.Wake()
	return nil
}

// Close closes tx. After the last sender is closed, the receiver drains
// the channel and then gets [ErrEndOfStream].
//
// Close is idempotent.
func (tx *UnboundedSender[T]) Close() {
	if tx.closed {
		return
	}
	tx.closed = true
	s := tx.s
	if s.senders--; s.senders == 0 {
		s.rx.Wake()
	}
}

// IsClosed reports whether the receiver has been closed.
func (tx *UnboundedSender[T]) IsClosed() bool {
	return tx.s.rxClosed
}

// TryRecv receives the oldest value without suspending.
//
// TryRecv reports [ErrEmpty] if no value is available,
// [ErrEndOfStream] if every sender has been closed and every value has
// been received, and [ErrClosed] if rx has been closed.
//
// One should only call this method in a [Task] function.
func (rx *UnboundedReceiver[T]) TryRecv() (v T, err error) {
	s := rx.s
	s.rx.TakePending()
	if s.rxClosed {
		return v, ErrClosed
	}
	if v, ok := s.buf.PopFront(); ok {
		return v, nil
	}
	if s.senders == 0 {
		return v, ErrEndOfStream
	}
	return v, ErrEmpty
}

// Recv returns a [Task] that awaits until a value is available, receives
// it, and then continues with the task f returns.
// See [UnboundedReceiver.TryRecv] for the errors f may get; f never gets
// [ErrEmpty].
func (rx *UnboundedReceiver[T]) Recv(f func(v T, err error) Task) Task {
	return func(co *Coroutine) Result {
		v, err := rx.TryRecv()
		if err == ErrEmpty {
			return co.Yield(&rx.s.rx)
		}
		return proceed(co, f, v, err)
	}
}

// Close closes rx. Buffered values are dropped and later sends report
// [ErrClosed].
//
// Close is idempotent.
func (rx *UnboundedReceiver[T]) Close() {
	s := rx.s
	if s.rxClosed {
		return
	}
	s.rxClosed = true
	s.buf.Clear()
	if s.rx.Registered() {
		s.rx.Wake()
	}
	s.rx.reset()
}

// IsClosed reports whether every sender has been closed.
// Values may still be buffered.
func (rx *UnboundedReceiver[T]) IsClosed() bool {
	return rx.s.senders == 0
}

// Len returns the number of buffered values.
func (rx *UnboundedReceiver[T]) Len() int {
	return rx.s.buf.Len()
}
