package localsync_test

import (
	"testing"

	"github.com/b97tsk/localsync"
)

func TestWakeSlot(t *testing.T) {
	t.Run("Pending", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var slot localsync.WakeSlot

		slot.Wake()

		runs := 0

		myExecutor.Spawn(func(co *localsync.Coroutine) localsync.Result {
			if runs++; runs < 3 {
				// Consumes the pending wake the first time,
				// and waits for another one the second time.
				return slot.Await(co).Reiterate()
			}
			return co.End()
		})

		if runs != 2 {
			t.Fatalf("runs = %d; want 2", runs)
		}

		myExecutor.Spawn(localsync.Do(slot.Wake))

		if runs != 3 {
			t.Fatalf("runs = %d; want 3", runs)
		}
		if slot.TakePending() {
			t.Fatal("Pending wake was not consumed.")
		}
	})
	t.Run("Replace", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var slot localsync.WakeSlot

		waiter := func(woken *bool) localsync.Task {
			started := false
			return func(co *localsync.Coroutine) localsync.Result {
				if !started {
					started = true
					return co.Yield(&slot)
				}
				*woken = true
				return co.End()
			}
		}

		var a, b bool

		myExecutor.Spawn(waiter(&a))
		myExecutor.Spawn(waiter(&b)) // Replaces a.

		myExecutor.Spawn(localsync.Do(slot.Wake))

		if a {
			t.Error("Replaced registrant should not be woken.")
		}
		if !b {
			t.Error("Registrant was not woken.")
		}
		if slot.Registered() || slot.TakePending() {
			t.Error("Slot should be empty.")
		}
	})
	t.Run("Cancel", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var slot localsync.WakeSlot

		var registered bool

		myExecutor.Spawn(localsync.Select(
			localsync.Await(&slot),
			localsync.Do(func() { registered = slot.Registered() }),
		))

		if !registered {
			t.Fatal("Await did not register.")
		}
		if slot.Registered() {
			t.Fatal("Canceled coroutine is still registered.")
		}

		slot.Wake() // Nobody to wake; sets the pending flag.

		if !slot.TakePending() {
			t.Fatal("Wake on an empty slot did not set the pending flag.")
		}
	})
	t.Run("Register", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		var slot localsync.WakeSlot

		var woken bool

		runs := 0

		myExecutor.Spawn(func(co *localsync.Coroutine) localsync.Result {
			if runs++; runs == 2 {
				slot.Unregister(co) // No-op; co is not registered.
				return co.End()
			}
			slot.Wake()
			woken = slot.Register(co)
			return co.Await().Reiterate()
		})

		if !woken || runs != 2 {
			t.Fatalf("woken = %v, runs = %d; want true, 2", woken, runs)
		}
		if slot.Registered() {
			t.Fatal("Slot should be empty.")
		}
	})
}
