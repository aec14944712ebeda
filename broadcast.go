package localsync

import "slices"

type broadcast[T any] struct {
	ring      []T
	next      uint64 // Sequence number of the next message.
	senders   int
	receivers []*BroadcastReceiver[T]
}

// BroadcastSender is a sending half of a broadcast channel.
// See [NewBroadcast].
type BroadcastSender[T any] struct {
	s      *broadcast[T]
	closed bool
}

// BroadcastReceiver is a receiving half of a broadcast channel.
// Every receiver has its own cursor and observes every message sent after
// it was created, unless it falls behind. See [NewBroadcast].
type BroadcastReceiver[T any] struct {
	s      *broadcast[T]
	cursor uint64 // Sequence number of the next message to receive.
	slot   WakeSlot
	closed bool
}

// NewBroadcast creates a channel on which every message is delivered to
// every receiver.
//
// The channel retains the last capacity messages. Sending never waits;
// when the channel is full, the oldest message is overwritten. A receiver
// that falls more than capacity messages behind gets a [*LaggedError]
// telling how many messages it missed, and continues from the oldest
// retained one.
//
// Panics if capacity is less than one. Unlike the other channels in this
// package, a broadcast channel has no zero-capacity form: a ring with no
// slots could not keep any message for a receiver to read.
//
// A broadcast channel must not be shared by more than one [Executor].
func NewBroadcast[T any](capacity int) (*BroadcastSender[T], *BroadcastReceiver[T]) {
	if capacity < 1 {
		panic("localsync(Broadcast): capacity must be positive")
	}
	s := &broadcast[T]{ring: make([]T, capacity), senders: 1}
	return &BroadcastSender[T]{s: s}, s.subscribe(0)
}

func (s *broadcast[T]) subscribe(cursor uint64) *BroadcastReceiver[T] {
	rx := &BroadcastReceiver[T]{s: s, cursor: cursor}
	s.receivers = append(s.receivers, rx)
	return rx
}

// oldest returns the sequence number of the oldest retained message.
func (s *broadcast[T]) oldest() uint64 {
	if n := uint64(len(s.ring)); s.next > n {
		return s.next - n
	}
	return 0
}

func (s *broadcast[T]) at(seq uint64) T {
	return s.ring[seq%uint64(len(s.ring))]
}

// Send sends v to every receiver, overwriting the oldest message if the
// channel is full, and wakes every waiting receiver.
//
// Send reports [ErrClosed] if tx has been closed.
//
// One should only call this method in a [Task] function.
func (tx *BroadcastSender[T]) Send(v T) error {
	if tx.closed {
		return ErrClosed
	}
	s := tx.s
	s.ring[s.next%uint64(len(s.ring))] = v
	s.next++
	for _, rx := range s.receivers {
		if rx.slot.Registered() {
			rx.slot.Wake()
		}
	}
	return nil
}

// Subscribe creates a receiver that observes every message sent from now
// on.
func (tx *BroadcastSender[T]) Subscribe() *BroadcastReceiver[T] {
	return tx.s.subscribe(tx.s.next)
}

// Clone creates another sender of the same channel.
// Receivers see [ErrEndOfStream] only after every sender has been closed.
//
// Panics if tx has been closed.
func (tx *BroadcastSender[T]) Clone() *BroadcastSender[T] {
	if tx.closed {
		panic("localsync(Broadcast): clone of closed sender")
	}
	tx.s.senders++
	return &BroadcastSender[T]{s: tx.s}
}

// Close closes tx. After the last sender is closed, every receiver gets
// the messages it has not yet received, and then [ErrEndOfStream].
//
// Close is idempotent.
func (tx *BroadcastSender[T]) Close() {
	if tx.closed {
		return
	}
	tx.closed = true
	s := tx.s
	if s.senders--; s.senders != 0 {
		return
	}
	for _, rx := range s.receivers {
		rx.slot.Wake()
	}
}

// Receivers returns the number of receivers that have not been closed.
func (tx *BroadcastSender[T]) Receivers() int {
	return len(tx.s.receivers)
}

// TryRecv receives the next message without suspending.
//
// TryRecv reports a [*LaggedError] if rx fell behind the retained window,
// [ErrEmpty] if rx is caught up, [ErrEndOfStream] if rx is caught up and
// every sender has been closed, and [ErrClosed] if rx has been closed.
func (rx *BroadcastReceiver[T]) TryRecv() (v T, err error) {
	if rx.closed {
		return v, ErrClosed
	}
	s := rx.s
	rx.slot.TakePending()
	if oldest := s.oldest(); rx.cursor < oldest {
		skipped := oldest - rx.cursor
		rx.cursor = oldest
		return v, &LaggedError{Skipped: skipped}
	}
	if rx.cursor < s.next {
		v = s.at(rx.cursor)
		rx.cursor++
		return v, nil
	}
	if s.senders == 0 {
		return v, ErrEndOfStream
	}
	return v, ErrEmpty
}

// Recv returns a [Task] that awaits until a message is available for rx,
// receives it, and then continues with the task f returns.
// See [BroadcastReceiver.TryRecv] for the errors f may get; f never gets
// [ErrEmpty].
func (rx *BroadcastReceiver[T]) Recv(f func(v T, err error) Task) Task {
	return func(co *Coroutine) Result {
		v, err := rx.TryRecv()
		if err == ErrEmpty {
			return co.Yield(&rx.slot)
		}
		return proceed(co, f, v, err)
	}
}

// Clone creates another receiver whose cursor starts where rx is.
// The two receivers are independent afterwards.
//
// Panics if rx has been closed.
func (rx *BroadcastReceiver[T]) Clone() *BroadcastReceiver[T] {
	if rx.closed {
		panic("localsync(Broadcast): clone of closed receiver")
	}
	return rx.s.subscribe(rx.cursor)
}

// Len returns the number of retained messages that rx has not received.
func (rx *BroadcastReceiver[T]) Len() int {
	if rx.closed {
		return 0
	}
	s := rx.s
	return int(s.next - max(rx.cursor, s.oldest()))
}

// Close closes rx. Other receivers and the retained messages are not
// affected. A coroutine waiting in Recv on rx observes [ErrClosed].
//
// Close is idempotent.
func (rx *BroadcastReceiver[T]) Close() {
	if rx.closed {
		return
	}
	rx.closed = true
	s := rx.s
	if i := slices.Index(s.receivers, rx); i != -1 {
		s.receivers = slices.Delete(s.receivers, i, i+1)
	}
	if rx.slot.Registered() {
		rx.slot.Wake()
	}
	rx.slot.reset()
}
