package localsync

// A Mutex is a mutual exclusion lock for coroutines.
//
// Coroutines that wait for a Mutex are served in the order they started
// waiting (FIFO). Unlock hands the Mutex straight to the earliest waiter;
// a free Mutex cannot be taken while anyone is waiting (no barging).
//
// A Mutex has no notion of an owner. Locking a Mutex that the same
// coroutine already holds never completes.
//
// The zero value is an unlocked Mutex.
// A Mutex must not be shared by more than one [Executor].
type Mutex struct {
	locked  bool
	waiters deque[*mutexWaiter]
}

// TryLock locks m if it is free and nobody is waiting for it, and reports
// whether it did.
func (m *Mutex) TryLock() bool {
	if m.locked || !m.waiters.Empty() {
		return false
	}
	m.locked = true
	return true
}

// Lock returns a [Task] that awaits until m is locked by the running
// coroutine, and then ends. The caller must call [Mutex.Unlock] later;
// see [Mutex.Guard] for a scoped alternative.
//
// A coroutine that is canceled while waiting gives up its place in line.
// If m has already been handed to it, m is handed on to the next waiter.
func (m *Mutex) Lock() Task {
	return func(co *Coroutine) Result {
		if m.TryLock() {
			return co.End()
		}
		w := &mutexWaiter{m: m}
		m.waiters.PushBack(w)
		co.Watch(&w.slot)
		co.Cleanup(w)
		return co.Await().Until(w.claim).End()
	}
}

// Unlock unlocks m, handing it to the earliest waiter if there is one.
//
// Panics if m is not locked.
//
// One should only call this method in a [Task] function.
func (m *Mutex) Unlock() {
	if !m.locked {
		panic("localsync(Mutex): unlock of unlocked mutex")
	}
	w, ok := m.waiters.PopFront()
	if !ok {
		m.locked = false
		return
	}
	w.granted = true
	w.slot.Wake()
}

// Locked reports whether m is locked.
func (m *Mutex) Locked() bool {
	return m.locked
}

// Guard returns a [Task] that locks m, runs t in a child coroutine while
// holding m, and then ends.
// m is unlocked whichever way t completes: by ending, exiting or
// panicking, or by being canceled together with the coroutine that runs
// the returned task.
func (m *Mutex) Guard(t Task) Task {
	must(t)
	return m.Lock().Then(func(co *Coroutine) Result {
		co.CleanupFunc(m.Unlock)
		co.spawn(t, co.Resume)
		return co.Await().End()
	})
}

type mutexWaiter struct {
	slot    WakeSlot
	m       *Mutex
	granted bool
	claimed bool
}

func (w *mutexWaiter) claim() bool {
	if w.granted {
		w.claimed = true
	}
	return w.claimed
}

func (w *mutexWaiter) Cleanup() {
	switch {
	case w.claimed:
	case w.granted:
		w.m.Unlock()
	default:
		w.m.waiters.Remove(func(v *mutexWaiter) bool { return v == w })
	}
}
