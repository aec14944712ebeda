// Package localsync provides synchronization primitives for coroutines
// that run on a single-threaded [Executor].
//
// Because an [Executor] runs one [Coroutine] at a time, and a coroutine
// only gives up control by returning from its [Task] function, state that
// is only touched from task functions never needs atomics or locks.
// The primitives in this package rely on that: none of them are safe for
// concurrent use, and none of them may be shared by more than one
// Executor.
//
// # Primitives
//
//   - [WakeSlot]: a place for one suspended coroutine to wait. Every other
//     primitive is built on WakeSlots.
//   - [NewOneshot]: transfers exactly one value from a sender to a receiver.
//   - [Notify]: a zero-payload signal with many waiters and optional
//     permits for notifications that arrive while nobody waits.
//   - [NewMpsc]: a bounded FIFO channel with many senders and one receiver.
//   - [NewUnbounded]: like NewMpsc, but with no limit, so sending never
//     waits.
//   - [NewBroadcast]: a channel on which every receiver sees every message,
//     or learns how many it missed.
//   - [Mutex]: a FIFO-fair mutual exclusion lock.
//   - [Semaphore]: a FIFO-fair weighted semaphore.
//
// # Waiting
//
// Operations that may have to wait return a [Task]. Such a task checks the
// state of the primitive and, if it cannot proceed, registers the running
// coroutine in a WakeSlot and yields. The side that changes the state first
// makes its change and then wakes the slot, which resumes the coroutine;
// the coroutine checks the state again and either proceeds or waits again.
//
// Operations that produce a result take a continuation, e.g.
// func(v T, err error) Task. Once the result is known, the coroutine makes
// a transition to the task the continuation returns, or ends its running
// task if the continuation is nil or returns nil.
// Every waiting operation has a Try counterpart that never waits.
//
// # Cancellation and Timeouts
//
// A waiting coroutine can be canceled, for example when it loses a
// [Select]. Canceling a coroutine drops its registrations and runs its
// cleanups, so a canceled waiter leaves no trace behind: it gives up its
// place in line, and anything that was already handed to it (a lock,
// semaphore weight, a NotifyOne notification) is handed on.
// Timeouts are composed this way too, by racing a wait against a timer.
//
// # Errors
//
// Failures are reported as error values, to the caller of a Try method or
// to a continuation: [ErrClosed] and [ErrEndOfStream] when the other side
// is gone, [ErrAlreadySent] and [ErrAlreadyTaken] for misuse of one-shot
// channels, [ErrSenderGone] when a one-shot sender is closed without
// sending, and [*LaggedError] for broadcast receivers that fell behind.
//
// # The Executor
//
// The [Executor] type is a minimal single-threaded async runtime.
// [Executor.Spawn] is safe for concurrent use, which makes an Executor a
// convenient point for goroutines to hand work over to a single thread.
// Child coroutines spawned with [Coroutine.Spawn] are canceled when their
// parent moves on. Unrecovered panics propagate from child to parent, and
// from root coroutines to [Executor.Run].
package localsync
