package localsync

import "sync"

// An Executor is a [Coroutine] spawner, and a Coroutine runner.
//
// When a Coroutine is spawned or resumed, it is added into an internal
// queue. The Run method then pops and runs each of them from the queue until
// the queue is emptied.
// It is done in a single-threaded manner.
// If one Coroutine blocks, no other Coroutines can run.
// The best practice is not to block.
//
// Root coroutines are popped before child coroutines; coroutines at the same
// level are popped in arrival order (FIFO).
//
// Every primitive in this package must not be shared by more than one
// Executor.
type Executor struct {
	mu      sync.Mutex
	pq      priorityqueue[*Coroutine]
	ps      panicstack
	running bool
	autorun func()
	pool    sync.Pool
}

// Autorun sets up an autorun function to calling the Run method automatically
// whenever a [Coroutine] is spawned or resumed while e is idle.
//
// One must pass a function that calls the Run method.
//
// If f blocks, the Spawn method may block too.
// The best practice is not to block.
func (e *Executor) Autorun(f func()) {
	e.mu.Lock()
	e.autorun = f
	e.mu.Unlock()
}

// Run pops and runs every [Coroutine] in the queue until the queue is
// emptied.
// If any root coroutine ended with an unrecovered panic, Run panics with
// an error value that describes all of them after the queue is emptied.
//
// Run must not be called twice at the same time.
func (e *Executor) Run() {
	e.mu.Lock()
	e.running = true

	for !e.pq.Empty() {
		co := e.pq.Pop()
		e.runCoroutine(co)
	}

	ps := e.ps
	e.ps = nil
	e.running = false
	e.mu.Unlock()

	ps.Repanic()
}

// Spawn creates a root [Coroutine] to work on t.
//
// The Coroutine is added in a queue. To run it, either call the Run method,
// or call the Autorun method to set up an autorun function beforehand.
//
// Spawn is safe for concurrent use.
func (e *Executor) Spawn(t Task) {
	co := e.newCoroutine().init(e, must(t)).recyclable()
	e.resumeCoroutine(co)
}

func (e *Executor) resumeCoroutine(co *Coroutine) {
	var autorun func()

	e.mu.Lock()

	switch flag := co.flag; {
	case flag&flagRecycled != 0:
		e.mu.Unlock()
		panic("localsync: coroutine has been recycled")
	case flag&flagEnqueued != 0:
		co.flag = flag | flagResumed
	default:
		co.flag = flag | flagResumed | flagEnqueued
		e.pq.Push(co)
		if !e.running && e.autorun != nil {
			e.running = true
			autorun = e.autorun
		}
	}

	e.mu.Unlock()

	if autorun != nil {
		autorun()
	}
}

// runCoroutine is called with e.mu held.
func (e *Executor) runCoroutine(co *Coroutine) {
	flag := co.flag &^ flagEnqueued
	co.flag = flag

	switch {
	case flag&flagEnded != 0:
		e.freeCoroutine(co)
	case flag&flagResumed != 0:
		e.mu.Unlock()
		co.run()
		e.mu.Lock()
	}
}

func (e *Executor) newCoroutine() *Coroutine {
	if co := e.pool.Get(); co != nil {
		return co.(*Coroutine)
	}
	return new(Coroutine)
}

func (e *Executor) freeCoroutine(co *Coroutine) {
	if co.flag&(flagRecyclable|flagRecycled|flagEscaped) == flagRecyclable {
		co.flag |= flagRecycled
		co.parent = nil
		co.executor = nil
		co.task = nil
		co.done = nil
		clear(co.ps)
		co.ps = co.ps[:0]
		e.pool.Put(co)
	}
}
