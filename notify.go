package localsync

// Notify is a zero-payload signal with many waiters.
//
// Unlike [Signal], a Notify wakes each waiter exactly once per
// notification and can remember notifications that arrive while nobody is
// waiting, as permits. [Notify.NotifyOne] wakes waiters in the order they
// started waiting (FIFO).
//
// The zero value is a Notify whose NotifyOne retains at most one permit and
// whose NotifyAll retains none. Use [NewNotify] or [NewStickyNotify] for
// other retention policies.
//
// A Notify must not be shared by more than one [Executor].
type Notify struct {
	waiters deque[*notifyWaiter]
	permits int
	limit   int // Zero means one; negative means none.
	sticky  bool
}

// NewNotify creates a [Notify] whose NotifyOne retains up to limit permits
// when nobody is waiting. A limit of zero disables retention.
// NotifyAll never retains a permit.
func NewNotify(limit int) *Notify {
	if limit < 0 {
		panic("localsync(Notify): negative permit limit")
	}
	n := &Notify{limit: limit}
	if limit == 0 {
		n.limit = -1
	}
	return n
}

// NewStickyNotify is like [NewNotify], except that NotifyAll also retains
// a permit, within the same limit, when nobody is waiting.
func NewStickyNotify(limit int) *Notify {
	n := NewNotify(limit)
	n.sticky = true
	return n
}

func (n *Notify) permitLimit() int {
	switch {
	case n.limit == 0:
		return 1
	case n.limit < 0:
		return 0
	}
	return n.limit
}

func (n *Notify) addPermit() {
	if n.permits < n.permitLimit() {
		n.permits++
	}
}

// NotifyOne wakes the earliest waiter of n.
// If nobody is waiting, NotifyOne stores a permit instead, if the limit
// allows, so that the next [Notify.Wait] resolves without suspending.
//
// One should only call this method in a [Task] function.
func (n *Notify) NotifyOne() {
	w, ok := n.waiters.PopFront()
	if !ok {
		n.addPermit()
		return
	}
	w.wake(true)
}

// NotifyAll wakes every coroutine that is waiting on n at the time of
// the call. Coroutines that start waiting afterwards are not affected,
// except through the permit that a sticky Notify stores when nobody is
// waiting.
//
// One should only call this method in a [Task] function.
func (n *Notify) NotifyAll() {
	if n.waiters.Empty() {
		if n.sticky {
			n.addPermit()
		}
		return
	}
	waiters := n.waiters
	n.waiters = deque[*notifyWaiter]{}
	for {
		w, ok := waiters.PopFront()
		if !ok {
			break
		}
		w.wake(false)
	}
}

// TryWait consumes a permit, if any, and reports whether it did.
func (n *Notify) TryWait() bool {
	if n.permits == 0 {
		return false
	}
	n.permits--
	return true
}

// Wait returns a [Task] that consumes a permit, or awaits until n wakes it,
// and then ends.
//
// A coroutine that is woken by NotifyOne but canceled before it resumes
// passes the notification on to the next waiter.
func (n *Notify) Wait() Task {
	return func(co *Coroutine) Result {
		if n.TryWait() {
			return co.End()
		}
		w := &notifyWaiter{n: n}
		n.waiters.PushBack(w)
		co.Watch(&w.slot)
		co.Cleanup(w)
		return co.Await().Until(w.claim).End()
	}
}

// Drain takes every permit stored in n and returns how many it took.
func (n *Notify) Drain() int {
	permits := n.permits
	n.permits = 0
	return permits
}

// Waiters returns the number of coroutines waiting on n.
func (n *Notify) Waiters() int {
	return n.waiters.Len()
}

// Permits returns the number of permits stored in n.
func (n *Notify) Permits() int {
	return n.permits
}

type notifyWaiter struct {
	slot     WakeSlot
	n        *Notify
	notified bool
	one      bool // Woken by NotifyOne.
	claimed  bool
}

func (w *notifyWaiter) wake(one bool) {
	w.notified = true
	w.one = one
	w.slot.Wake()
}

func (w *notifyWaiter) claim() bool {
	if w.notified {
		w.claimed = true
	}
	return w.claimed
}

func (w *notifyWaiter) Cleanup() {
	switch {
	case w.claimed:
	case !w.notified:
		w.n.waiters.Remove(func(v *notifyWaiter) bool { return v == w })
	case w.one:
		w.n.NotifyOne()
	}
}
