package localsync

type mpsc[T any] struct {
	buf      deque[T]
	cap      int
	senders  int
	rxClosed bool
	rx       WakeSlot
	blocked  deque[*mpscSend[T]]
	rxGone   Signal
}

// MpscSender is a sending half of a bounded multi-producer, single-consumer
// channel. See [NewMpsc].
type MpscSender[T any] struct {
	s      *mpsc[T]
	closed bool
}

// MpscReceiver is the receiving half of a bounded multi-producer,
// single-consumer channel. See [NewMpsc].
type MpscReceiver[T any] struct {
	s *mpsc[T]
}

// NewMpsc creates a FIFO channel that buffers up to capacity values.
//
// Senders that find the buffer full wait in line (FIFO); as the receiver
// frees up room, their values enter the buffer in that order.
// A capacity of zero makes the channel unbuffered: a send completes only
// when a receive takes its value, and [MpscSender.TrySend] always reports
// [ErrFull].
//
// When every sender has been closed, the receiver still gets every value
// that was sent, and then [ErrEndOfStream].
//
// An Mpsc channel must not be shared by more than one [Executor].
func NewMpsc[T any](capacity int) (*MpscSender[T], *MpscReceiver[T]) {
	if capacity < 0 {
		panic("localsync(Mpsc): negative capacity")
	}
	s := &mpsc[T]{cap: capacity, senders: 1}
	return &MpscSender[T]{s: s}, &MpscReceiver[T]{s: s}
}

// ready reports whether a value can be sent without waiting.
// With a capacity of zero, it never can.
func (s *mpsc[T]) ready() bool {
	return s.blocked.Empty() && s.buf.Len() < s.cap
}

// admit moves values of waiting senders into the buffer while there is
// room for them.
func (s *mpsc[T]) admit() {
	for s.buf.Len() < s.cap {
		w, ok := s.blocked.PopFront()
		if !ok {
			return
		}
		s.buf.PushBack(w.value)
		w.accept()
	}
}

// Clone creates another sender of the same channel.
// The channel ends only after every sender has been closed.
//
// Panics if tx has been closed.
func (tx *MpscSender[T]) Clone() *MpscSender[T] {
	if tx.closed {
		panic("localsync(Mpsc): clone of closed sender")
	}
	tx.s.senders++
	return &MpscSender[T]{s: tx.s}
}

// TrySend sends v without suspending.
//
// TrySend reports [ErrClosed] if the receiver or tx has been closed, and
// [ErrFull] if v cannot be sent right now.
//
// One should only call this method in a [Task] function.
func (tx *MpscSender[T]) TrySend(v T) error {
	s := tx.s
	switch {
	case tx.closed || s.rxClosed:
		return ErrClosed
	case !s.ready():
		return ErrFull
	}
	s.buf.PushBack(v)
	s.rx.Wake()
	return nil
}

// Send returns a [Task] that sends v, waiting in line while the channel is
// full, and then continues with the task f returns.
// f gets nil on success, or [ErrClosed] if the receiver or tx has been
// closed.
//
// A coroutine that is canceled before v is admitted into the buffer (or,
// with a capacity of zero, taken by a receive) gives up its place in line
// and v is not sent. Once admitted, v is delivered regardless.
func (tx *MpscSender[T]) Send(v T, f func(err error) Task) Task {
	return func(co *Coroutine) Result {
		switch err := tx.TrySend(v); err {
		case nil, ErrClosed:
			return proceedErr(co, f, err)
		}
		s := tx.s
		w := &mpscSend[T]{s: s, value: v}
		s.blocked.PushBack(w)
		if s.cap == 0 {
			s.rx.Wake()
		}
		co.Watch(&w.slot)
		co.Cleanup(w)
		return co.Await().Until(w.claim).Then(func(co *Coroutine) Result {
			return proceedErr(co, f, w.err)
		})
	}
}

// Close closes tx. After the last sender is closed, the receiver drains
// the channel and then gets [ErrEndOfStream].
//
// Close is idempotent.
func (tx *MpscSender[T]) Close() {
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
func (tx *MpscSender[T]) IsClosed() bool {
	return tx.s.rxClosed
}

// Closed returns a [Task] that awaits until the receiver has been closed,
// and then ends.
func (tx *MpscSender[T]) Closed() Task {
	s := tx.s
	return func(co *Coroutine) Result {
		if s.rxClosed {
			return co.End()
		}
		return co.Yield(&s.rxGone)
	}
}

// TryRecv receives the oldest value without suspending.
//
// TryRecv reports [ErrEmpty] if no value is available,
// [ErrEndOfStream] if every sender has been closed and every value has
// been received, and [ErrClosed] if rx has been closed.
//
// One should only call this method in a [Task] function.
func (rx *MpscReceiver[T]) TryRecv() (v T, err error) {
	s := rx.s
	s.rx.TakePending()
	if s.rxClosed {
		return v, ErrClosed
	}
	if v, ok := s.buf.PopFront(); ok {
		s.admit()
		return v, nil
	}
	if w, ok := s.blocked.PopFront(); ok {
		w.accept()
		return w.value, nil
	}
	if s.senders == 0 {
		return v, ErrEndOfStream
	}
	return v, ErrEmpty
}

// Recv returns a [Task] that awaits until a value is available, receives
// it, and then continues with the task f returns.
// See [MpscReceiver.TryRecv] for the errors f may get; f never gets
// [ErrEmpty].
func (rx *MpscReceiver[T]) Recv(f func(v T, err error) Task) Task {
	return func(co *Coroutine) Result {
		v, err := rx.TryRecv()
		if err == ErrEmpty {
			return co.Yield(&rx.s.rx)
		}
		return proceed(co, f, v, err)
	}
}

// Close closes rx. Buffered values are dropped and waiting senders get
// [ErrClosed].
//
// Close is idempotent.
func (rx *MpscReceiver[T]) Close() {
	s := rx.s
	if s.rxClosed {
		return
	}
	s.rxClosed = true
	s.buf.Clear()
	blocked := s.blocked
	s.blocked = deque[*mpscSend[T]]{}
	if s.rx.Registered() {
		s.rx.Wake()
	}
	s.rx.reset()
	for {
		w, ok := blocked.PopFront()
		if !ok {
			break
		}
		w.reject()
	}
	s.rxGone.Notify()
}

// Len returns the number of buffered values.
func (rx *MpscReceiver[T]) Len() int {
	return rx.s.buf.Len()
}

// Cap returns the capacity of the channel.
func (rx *MpscReceiver[T]) Cap() int {
	return rx.s.cap
}

// mpscSend is a sender waiting in line.
type mpscSend[T any] struct {
	slot    WakeSlot
	s       *mpsc[T]
	value   T
	done    bool
	claimed bool
	err     error
}

func (w *mpscSend[T]) accept() {
	w.done = true
	w.slot.Wake()
}

func (w *mpscSend[T]) reject() {
	var zero T
	w.value = zero
	w.done = true
	w.err = ErrClosed
	w.slot.Wake()
}

func (w *mpscSend[T]) claim() bool {
	if w.done {
		w.claimed = true
	}
	return w.claimed
}

func (w *mpscSend[T]) Cleanup() {
	if !w.done {
		w.s.blocked.Remove(func(v *mpscSend[T]) bool { return v == w })
	}
}
