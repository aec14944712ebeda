package localsync_test

import (
	"sync"
	"testing"
	"time"

	"github.com/b97tsk/localsync"
)

func TestSignal(t *testing.T) {
	var wg sync.WaitGroup // For keeping track of goroutines.

	var myExecutor localsync.Executor

	myExecutor.Autorun(func() { wg.Go(myExecutor.Run) })

	sleep := func(d time.Duration) localsync.Task {
		return func(co *localsync.Coroutine) localsync.Result {
			var sig localsync.Signal
			wg.Add(1) // Keep track of timers too.
			tm := time.AfterFunc(d, func() {
				defer wg.Done()
				myExecutor.Spawn(localsync.Do(sig.Notify))
			})
			co.CleanupFunc(func() {
				if tm.Stop() {
					wg.Done()
				}
			})
			return co.Await(&sig).End()
		}
	}

	var sig localsync.Signal

	myExecutor.Spawn(localsync.LoopN(4, localsync.Block(
		sleep(100*time.Millisecond),
		localsync.Do(sig.Notify),
	)))

	sema := localsync.NewSemaphore(10) // At most 10 sleepers at a time.

	completed := 0

	for i := range 100 {
		myExecutor.Spawn(localsync.Block(
			sema.Acquire(1),
			localsync.Select(
				localsync.Await(&sig),
				sleep(time.Duration(4+i%5)*10*time.Millisecond),
			),
			localsync.Do(func() {
				sema.Release(1)
				completed++
			}),
		))
	}

	wg.Wait()

	if completed != 100 {
		t.Fatalf("completed = %d; want 100", completed)
	}
}
