package localsync_test

import (
	"math"
	"slices"
	"testing"

	"github.com/b97tsk/localsync"
)

func TestNotify(t *testing.T) {
	t.Run("NotifyOne", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var n localsync.Notify

		var order []int

		for i := range 3 {
			myExecutor.Spawn(n.Wait().Then(localsync.Do(func() { order = append(order, i) })))
		}

		if n.Waiters() != 3 {
			t.Fatalf("Waiters() = %d; want 3", n.Waiters())
		}

		for range 3 {
			myExecutor.Spawn(localsync.Do(n.NotifyOne))
		}

		if !slices.Equal(order, []int{0, 1, 2}) {
			t.Fatalf("order = %v; want [0 1 2]", order)
		}
	})
	t.Run("NotifyAll", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var n localsync.Notify

		wakes := make([]int, 3)

		for i := range wakes {
			myExecutor.Spawn(localsync.Loop(n.Wait().Then(localsync.Do(func() { wakes[i]++ }))))
		}

		myExecutor.Spawn(localsync.Do(n.NotifyAll))

		if !slices.Equal(wakes, []int{1, 1, 1}) {
			t.Fatalf("wakes = %v; want [1 1 1]", wakes)
		}
		if n.Waiters() != 3 {
			t.Fatalf("Waiters() = %d; want 3", n.Waiters())
		}
		if n.Permits() != 0 {
			t.Fatalf("Permits() = %d; want 0", n.Permits())
		}
	})
	t.Run("Permits", func(t *testing.T) {
		var n localsync.Notify

		n.NotifyAll()

		if n.TryWait() {
			t.Fatal("NotifyAll should not store a permit.")
		}

		n.NotifyOne()
		n.NotifyOne()

		if n.Permits() != 1 {
			t.Fatalf("Permits() = %d; want 1", n.Permits())
		}
		if !n.TryWait() || n.TryWait() {
			t.Fatal("TryWait should succeed exactly once.")
		}
	})
	t.Run("Limit", func(t *testing.T) {
		n := localsync.NewNotify(3)

		for range 5 {
			n.NotifyOne()
		}

		if n.Permits() != 3 {
			t.Fatalf("Permits() = %d; want 3", n.Permits())
		}

		n = localsync.NewNotify(0)

		n.NotifyOne()

		if n.Permits() != 0 {
			t.Fatalf("Permits() = %d; want 0", n.Permits())
		}

		expectPanic(t, "NewNotify", func() { localsync.NewNotify(-1) })
	})
	t.Run("Sticky", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		n := localsync.NewStickyNotify(1)

		n.NotifyAll()
		n.NotifyAll()

		var woken bool

		myExecutor.Spawn(n.Wait().Then(localsync.Do(func() { woken = true })))

		if !woken {
			t.Fatal("Wait did not consume the stored permit.")
		}
		if n.TryWait() {
			t.Fatal("NotifyAll should store at most one permit.")
		}
	})
	t.Run("Cancel", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var n localsync.Notify

		myExecutor.Spawn(localsync.Select(
			n.Wait(),
			localsync.End(),
		))

		if n.Waiters() != 0 {
			t.Fatalf("Waiters() = %d; want 0", n.Waiters())
		}

		myExecutor.Spawn(localsync.Do(n.NotifyOne))

		if n.Permits() != 1 {
			t.Fatalf("Permits() = %d; want 1", n.Permits())
		}
	})
	t.Run("Drain", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		n := localsync.NewNotify(math.MaxInt)

		for range 3 {
			n.NotifyOne()
		}

		if got := n.Drain(); got != 3 {
			t.Fatalf("Drain() = %d; want 3", got)
		}
		if got := n.Drain(); got != 0 {
			t.Fatalf("Drain() = %d; want 0", got)
		}

		var woken bool

		myExecutor.Spawn(n.Wait().Then(localsync.Do(func() { woken = true })))

		if woken {
			t.Fatal("Wait should not find a permit after Drain.")
		}

		myExecutor.Spawn(localsync.Do(n.NotifyOne))

		if !woken || n.Permits() != 0 {
			t.Fatalf("woken = %v, Permits() = %d; want true, 0", woken, n.Permits())
		}
	})
}
