package localsync_test

import (
	"testing"

	"github.com/b97tsk/localsync"
)

func TestBugs(t *testing.T) {
	t.Run("Semaphore-1", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		sema := localsync.NewSemaphore(1)

		myExecutor.Spawn(localsync.Select(
			localsync.Block(
				sema.Acquire(1),
				sema.Acquire(1),
			),
			localsync.Do(func() { sema.Release(1) }),
		))

		var acquired bool

		myExecutor.Spawn(localsync.Block(
			sema.Acquire(1),
			localsync.Do(func() { acquired = true }),
		))

		if !acquired {
			t.Error("Acquire did not succeed when there are no waiters.")
		}
	})
	t.Run("Semaphore-2", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		sema := localsync.NewSemaphore(10)

		var sig localsync.Signal

		myExecutor.Spawn(localsync.Select(
			localsync.Await(&sig),
			localsync.Block(
				sema.Acquire(1),
				sema.Acquire(10),
			),
		))

		var acquired bool

		myExecutor.Spawn(localsync.Block(
			sema.Acquire(1),
			localsync.Do(func() { acquired = true }),
		))

		if acquired {
			t.Error("Acquire should not succeed when there are waiters.")
		}

		myExecutor.Spawn(localsync.Do(sig.Notify))

		if !acquired {
			t.Error("Acquire did not succeed when there are no waiters.")
		}
	})
	t.Run("Mutex-1", func(t *testing.T) {
		// A waiter that is handed the lock and then canceled before it
		// resumes must pass the lock on.
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var mu localsync.Mutex

		if !mu.TryLock() {
			t.Fatal("TryLock did not succeed on a free mutex.")
		}

		var sig localsync.Signal

		var b, c bool

		myExecutor.Spawn(func(co *localsync.Coroutine) localsync.Result {
			co.Spawn(mu.Lock().Then(localsync.Do(func() { b = true })))
			return co.Await(&sig).End()
		})

		myExecutor.Spawn(mu.Lock().Then(localsync.Do(func() { c = true })))

		myExecutor.Spawn(localsync.Do(func() {
			mu.Unlock()  // Hands the lock to b, a child coroutine.
			sig.Notify() // Resumes b's parent, which is run first.
		}))

		if b {
			t.Error("Canceled waiter should not have got the lock.")
		}
		if !c {
			t.Error("Lock was not passed on to the next waiter.")
		}
		if !mu.Locked() {
			t.Error("Mutex should still be locked by the last waiter.")
		}
	})
	t.Run("Notify-1", func(t *testing.T) {
		// A waiter that is woken by NotifyOne and then canceled before it
		// resumes must pass the notification on.
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var n localsync.Notify

		var sig localsync.Signal

		var a, b bool

		myExecutor.Spawn(func(co *localsync.Coroutine) localsync.Result {
			co.Spawn(n.Wait().Then(localsync.Do(func() { a = true })))
			return co.Await(&sig).End()
		})

		myExecutor.Spawn(n.Wait().Then(localsync.Do(func() { b = true })))

		myExecutor.Spawn(localsync.Do(func() {
			n.NotifyOne()
			sig.Notify()
		}))

		if a {
			t.Error("Canceled waiter should not have been woken.")
		}
		if !b {
			t.Error("Notification was not passed on to the next waiter.")
		}
		if n.Permits() != 0 || n.Waiters() != 0 {
			t.Errorf("Permits() = %d, Waiters() = %d; want 0, 0", n.Permits(), n.Waiters())
		}
	})
	t.Run("Notify-2", func(t *testing.T) {
		// Same as above, but there is no one to pass the notification on to.
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var n localsync.Notify

		var sig localsync.Signal

		myExecutor.Spawn(func(co *localsync.Coroutine) localsync.Result {
			co.Spawn(n.Wait())
			return co.Await(&sig).End()
		})

		myExecutor.Spawn(localsync.Do(func() {
			n.NotifyOne()
			sig.Notify()
		}))

		if !n.TryWait() {
			t.Error("Notification was not stored as a permit.")
		}
	})
}
