package localsync

// Semaphore provides a way to bound asynchronous access to a resource.
// The callers can request access with a given weight.
//
// Waiters are served in the order they started waiting (FIFO); a request
// that would fit cannot overtake an earlier one that does not.
//
// Note that this Semaphore type does not provide backpressure for spawning
// a lot of tasks. One should instead look for a sync implementation.
//
// A Semaphore must not be shared by more than one [Executor].
type Semaphore struct {
	size    int64
	cur     int64
	waiters deque[*semaphoreWaiter]
}

// NewSemaphore creates a new weighted semaphore with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// TryAcquire acquires a weight of n without waiting, and reports whether
// it did. It fails if anyone is waiting.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("localsync(Semaphore): negative weight")
	}
	if s.size-s.cur < n || !s.waiters.Empty() {
		return false
	}
	s.cur += n
	return true
}

// Acquire returns a [Task] that awaits until a weight of n is acquired from
// the semaphore, and then ends.
//
// A coroutine that is canceled while waiting gives up its place in line.
// If the weight has already been granted to it, the weight is released.
func (s *Semaphore) Acquire(n int64) Task {
	if n < 0 {
		panic("localsync(Semaphore): negative weight")
	}
	return func(co *Coroutine) Result {
		if s.TryAcquire(n) {
			return co.End()
		}
		if n > s.size {
			return co.Await().End() // Impossible to success.
		}
		w := &semaphoreWaiter{s: s, n: n}
		s.waiters.PushBack(w)
		co.Watch(&w.slot)
		co.Cleanup(w)
		return co.Await().Until(w.claim).End()
	}
}

// Release releases the semaphore with a weight of n.
//
// One should only call this method in a [Task] function.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("localsync(Semaphore): negative weight")
	}
	if s.cur < n {
		panic("localsync(Semaphore): released more than held")
	}
	s.cur -= n
	s.notifyWaiters()
}

func (s *Semaphore) notifyWaiters() {
	for {
		w, ok := s.waiters.Front()
		if !ok || s.size-s.cur < w.n {
			return
		}
		s.waiters.PopFront()
		s.cur += w.n
		w.granted = true
		w.slot.Wake()
	}
}

type semaphoreWaiter struct {
	slot    WakeSlot
	s       *Semaphore
	n       int64
	granted bool
	claimed bool
}

func (w *semaphoreWaiter) claim() bool {
	if w.granted {
		w.claimed = true
	}
	return w.claimed
}

func (w *semaphoreWaiter) Cleanup() {
	switch {
	case w.claimed:
	case w.granted:
		w.s.Release(w.n)
	default:
		s := w.s
		if s.waiters.Remove(func(v *semaphoreWaiter) bool { return v == w }) {
			s.notifyWaiters() // w may have been holding up the line.
		}
	}
}
