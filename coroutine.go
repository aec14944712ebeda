package localsync

import "slices"

type action int

const (
	_ action = iota
	doYield
	doTransition
	doTailTransition // Do transition and remove controller.
	doEnd
	doBreak
	doContinue
	doRaise // Exit or panic.
)

const (
	flagResumed = 1 << iota
	flagEnqueued
	flagEnded
	flagPanicking
	flagCanceled
	flagRecyclable
	flagRecycled
	flagEscaped
)

// A Coroutine is an execution of code, similar to a goroutine but cooperative
// and stackless.
//
// A coroutine is created with a function called [Task].
// When an [Executor] spawns a coroutine with a task, it runs the coroutine by
// calling the task function with the coroutine as the argument.
// The return value determines whether to end the coroutine or to yield it
// so that it could resume later.
//
// Yielding is how a coroutine suspends. In order to resume, a coroutine must
// watch at least one [Event] (e.g. [Signal], [WakeSlot]) or be resumed
// explicitly with [Coroutine.Resume].
// Every primitive in this package suspends coroutines this way.
type Coroutine struct {
	flag        uint16
	level       uint32
	parent      *Coroutine
	executor    *Executor
	ps          panicstack
	guard       func() bool
	task        Task
	done        func()
	deps        map[Event]struct{}
	cleanups    []Cleanup
	controllers []controller
}

func (co *Coroutine) init(e *Executor, t Task) *Coroutine {
	co.flag = flagResumed
	co.level = 0
	co.executor = e
	co.task = t
	return co
}

func (co *Coroutine) recyclable() *Coroutine {
	co.flag |= flagRecyclable
	return co
}

func (co *Coroutine) withLevel(l uint32) *Coroutine {
	co.level = l
	return co
}

func (co *Coroutine) queueLevel() int {
	return int(co.level)
}

// Resume resumes co.
//
// Resume schedules co to run again on its [Executor]. It does nothing more;
// a resumed coroutine re-checks whatever it was waiting for.
func (co *Coroutine) Resume() {
	co.executor.resumeCoroutine(co)
}

func (co *Coroutine) run() (yielded bool) {
	var res Result

	ps := &co.ps
	guard := co.guard

	for {
		if guard != nil {
			var ok bool

			co.flag &^= flagResumed

			if !ps.Try(func() { ok = guard() }) {
				co.task = (*Coroutine).panic
				ok = true
			}

			if !ok {
				return true
			}

			guard = nil
			co.guard = nil
		}

		co.clearDeps()
		co.clearCleanups()

		co.flag &^= flagResumed

		if !ps.Try(func() { res = co.task(co) }) {
			res = co.panic()
		}

		if res.action != doYield && res.action != doTransition {
			co.clearDeps()
			co.clearCleanups()
			if co.Panicking() {
				res = co.panic()
			}
			if !ps.Try(func() { res = co.negotiate(res) }) {
				res = co.negotiate(co.panic())
			}
		}

		if res.task != nil {
			co.task = res.task
		}

		if res.guard != nil {
			guard = res.guard
			co.guard = guard
			continue // For calling guard immediately.
		}

		if res.action != doTransition {
			break
		}

		if res.controller.kind != 0 {
			co.controllers = append(co.controllers, res.controller)
		}
	}

	if res.action == doYield {
		return true
	}

	co.flag |= flagEnded

	co.clearDeps()
	co.clearCleanups()
	co.removeFromParent()

	switch {
	case co.Panicking():
		if parent := co.parent; parent != nil {
			parent.flag |= flagPanicking
			parent.guard = nil
			parent.task = (*Coroutine).panic
			parent.ps = append(parent.ps, co.ps...)
			parent.Resume()
		} else {
			co.executor.ps = append(co.executor.ps, co.ps...)
		}
	case co.flag&flagCanceled == 0 && co.done != nil:
		done := co.done
		co.done = nil
		done()
	}

	if len(co.controllers) != 0 {
		panic("localsync: internal error: not all controllers are handled")
	}

	if co.flag&flagEnqueued == 0 {
		co.executor.freeCoroutine(co)
	}

	return false
}

// negotiate passes res through the controller stack, from top to bottom,
// until one of them makes a transition.
func (co *Coroutine) negotiate(res Result) Result {
	for n := len(co.controllers); n != 0; n = len(co.controllers) {
		c := &co.controllers[n-1]
		res = c.negotiate(co, res)
		if res.action == doTransition {
			return res
		}
		co.controllers[n-1] = controller{}
		co.controllers = co.controllers[:n-1]
		if res.action == doTailTransition {
			res.action = doTransition
			return res
		}
	}
	switch res.action {
	case doBreak:
		panic("localsync: unhandled break action")
	case doContinue:
		panic("localsync: unhandled continue action")
	}
	return res
}

func (co *Coroutine) clearDeps() {
	deps := co.deps
	for d := range deps {
		delete(deps, d)
		d.removeListener(co)
	}
}

func (co *Coroutine) clearCleanups() {
	ok := true
	cleanups := co.cleanups
	for len(co.cleanups) != 0 {
		cleanups := co.cleanups
		co.cleanups = nil
		for _, c := range slices.Backward(cleanups) {
			ok = co.ps.Try(c.Cleanup) && ok
		}
	}
	clear(cleanups)
	co.cleanups = cleanups[:0]
	if !ok {
		co.flag |= flagPanicking
		co.task = (*Coroutine).panic
	}
}

func (co *Coroutine) removeFromParent() {
	parent := co.parent
	if parent == nil {
		return
	}
	for i, c := range parent.cleanups {
		if c == (*childCoroutineCleanup)(co) {
			parent.cleanups = slices.Delete(parent.cleanups, i, i+1)
			break
		}
	}
}

type childCoroutineCleanup Coroutine

func (child *childCoroutineCleanup) Cleanup() {
	co := (*Coroutine)(child)
	co.guard = nil
	co.task = (*Coroutine).cancel
	if yielded := co.run(); yielded {
		panic("localsync: internal error: child coroutine did not end")
	}
}

// Ended reports whether co has already ended (or exited).
func (co *Coroutine) Ended() bool {
	return co.flag&flagEnded != 0
}

// Panicking reports whether co is panicking.
func (co *Coroutine) Panicking() bool {
	return co.flag&flagPanicking != 0
}

// Canceled reports whether co has been canceled by its parent.
func (co *Coroutine) Canceled() bool {
	return co.flag&flagCanceled != 0
}

// Resumed reports whether co has been resumed.
func (co *Coroutine) Resumed() bool {
	return co.flag&flagResumed != 0
}

// Escape marks co as an escaped coroutine, preventing co from being put into
// pool for recycling.
// Useful when one wants to access co from another goroutine.
func (co *Coroutine) Escape() {
	co.flag |= flagEscaped
}

// Unescape undoes what [Coroutine.Escape] does so that co can be put into
// pool again for recycling.
//
// Panics if Escape has not yet been called after the last call of Unescape.
func (co *Coroutine) Unescape() {
	if co.flag&flagEscaped == 0 {
		panic("localsync: coroutine did not escape")
	}
	co.flag &^= flagEscaped
}

// Watch watches some events so that, when any of them notifies, co resumes.
//
// Watches are dropped when co resumes, ends, exits, is canceled, or makes
// a transition, whichever comes first.
func (co *Coroutine) Watch(ev ...Event) {
	if co.flag&(flagEnded|flagCanceled) != 0 {
		return
	}
	for _, d := range ev {
		deps := co.deps
		if deps == nil {
			deps = make(map[Event]struct{})
			co.deps = deps
		}
		deps[d] = struct{}{}
		d.addListener(co)
	}
}

// Cleanup represents any type that carries a Cleanup method.
// A Cleanup can be added to a coroutine in a [Task] function for making
// an effect some time later when the coroutine resumes or ends or exits, or
// when the coroutine is canceled or making a transition to work on another
// [Task].
type Cleanup interface {
	Cleanup()
}

// A CleanupFunc is a func() that implements the [Cleanup] interface.
type CleanupFunc func()

// Cleanup implements the [Cleanup] interface.
func (f CleanupFunc) Cleanup() { f() }

// Cleanup adds something to clean up when co resumes or ends or exits, or when
// co is canceled or making a transition to work on another [Task].
func (co *Coroutine) Cleanup(c Cleanup) {
	if co.Ended() {
		panic("localsync: coroutine has already ended")
	}
	if c == nil {
		return
	}
	co.cleanups = append(co.cleanups, c)
}

// CleanupFunc adds a function call when co resumes or ends or exits, or when
// co is canceled or making a transition to work on another [Task].
func (co *Coroutine) CleanupFunc(f func()) {
	if f == nil {
		return
	}
	co.Cleanup(CleanupFunc(f))
}

// Spawn creates a child coroutine to work on t.
//
// Spawn runs t immediately. If t panics immediately, Spawn panics too.
//
// Child coroutines, if not yet ended, are canceled when the parent one resumes
// or ends or exits, or when the parent one is making a transition to work on
// another [Task].
// When a coroutine is canceled, its cleanups run and it ends without running
// any more of its task.
func (co *Coroutine) Spawn(t Task) {
	co.spawn(t, nil)
}

// spawn is like Spawn, but calls done if the child ends on its own
// (i.e. neither canceled nor panicking).
func (co *Coroutine) spawn(t Task, done func()) {
	if co.Ended() {
		panic("localsync: coroutine has already ended")
	}

	level := co.level + 1
	if level == 0 {
		panic("localsync: too many levels")
	}

	child := co.executor.newCoroutine().init(co.executor, must(t)).recyclable().withLevel(level)
	child.parent = co
	child.done = done

	switch yielded := child.run(); {
	case yielded:
		co.cleanups = append(co.cleanups, (*childCoroutineCleanup)(child))
	case co.Panicking():
		// child panics.
		panic(dummy{}) // Stop current task.
	}
}

// Result is the type of the return value of a [Task] function.
// A Result determines what next for a coroutine to do after running a task.
//
// A Result can be created by calling one of the following methods:
//   - [Coroutine.Await]: for creating a [PendingResult] that can be transformed
//     into a [Result] with one of its methods, which will then cause
//     the running coroutine to yield;
//   - [Coroutine.Yield]: for yielding a coroutine with additional events to
//     watch and, when resumed, reiterating the running task;
//   - [Coroutine.Transition]: for making a transition to work on another task;
//   - [Coroutine.End]: for ending the running task of a coroutine;
//   - [Coroutine.Break]: for breaking a [Loop] (or [LoopN]);
//   - [Coroutine.Continue]: for continuing a [Loop] (or [LoopN]);
//   - [Coroutine.Exit]: for exiting a coroutine.
//
// One should just return a Result right after it is created.
type Result struct {
	action     action
	guard      func() bool // used by doYield only
	task       Task        // used by doYield, doTransition and doTailTransition
	controller controller  // used by doTransition only
}

// PendingResult is the return type of the [Coroutine.Await] method.
// A PendingResult is an intermediate value that must be transformed into
// a [Result] with one of its methods before returning from a [Task].
type PendingResult struct {
	res Result
}

// Reiterate returns a [Result] that will cause the running coroutine to yield
// and, when resumed, reiterate the running task.
func (pr PendingResult) Reiterate() Result {
	return pr.res
}

// Then returns a [Result] that will cause the running coroutine to yield and,
// when resumed, make a transition to work on another [Task].
func (pr PendingResult) Then(t Task) Result {
	pr.res.task = must(t)
	return pr.res
}

// End returns a [Result] that will cause the running coroutine to yield and,
// when resumed, end the running task.
func (pr PendingResult) End() Result {
	return pr.Then(End())
}

// Break returns a [Result] that will cause the running coroutine to yield and,
// when resumed, break a [Loop] (or [LoopN]).
func (pr PendingResult) Break() Result {
	return pr.Then(Break())
}

// Continue returns a [Result] that will cause the running coroutine to yield
// and, when resumed, continue a [Loop] (or [LoopN]).
func (pr PendingResult) Continue() Result {
	return pr.Then(Continue())
}

// Exit returns a [Result] that will cause the running coroutine to yield and,
// when resumed, cause the running coroutine to exit.
func (pr PendingResult) Exit() Result {
	return pr.Then(Exit())
}

// Until transforms pr into one with a condition.
// Affected coroutines remain yielded until the condition is met.
// The condition is checked right away, and then every time the coroutine
// resumes, before any watch or cleanup is dropped.
func (pr PendingResult) Until(f func() bool) PendingResult {
	pr.res.guard = f
	return pr
}

// Await returns a [PendingResult] that can be transformed into a [Result]
// with one of its methods, which will then cause co to yield.
// Await also accepts additional events to watch.
func (co *Coroutine) Await(ev ...Event) PendingResult {
	if len(ev) != 0 {
		co.Watch(ev...)
	}
	return PendingResult{res: Result{action: doYield}}
}

// Yield returns a [Result] that will cause co to yield and, when co is resumed,
// reiterate the running task.
// Yield also accepts additional events to watch.
func (co *Coroutine) Yield(ev ...Event) Result {
	return co.Await(ev...).Reiterate()
}

// Transition returns a [Result] that will cause co to make a transition to
// work on t.
func (co *Coroutine) Transition(t Task) Result {
	return Result{action: doTransition, task: must(t)}
}

// End returns a [Result] that will cause co to end its current running task.
func (co *Coroutine) End() Result {
	return Result{action: doEnd}
}

// Break returns a [Result] that will cause co to break a [Loop] (or [LoopN]).
func (co *Coroutine) Break() Result {
	return Result{action: doBreak}
}

// Continue returns a [Result] that will cause co to continue a [Loop]
// (or [LoopN]).
func (co *Coroutine) Continue() Result {
	return Result{action: doContinue}
}

// Exit returns a [Result] that will cause co to exit.
func (co *Coroutine) Exit() Result {
	return Result{action: doRaise}
}

func (co *Coroutine) cancel() Result {
	co.flag |= flagCanceled
	return Result{action: doRaise}
}

func (co *Coroutine) panic() Result {
	co.flag |= flagPanicking
	return Result{action: doRaise}
}

type controllerKind int8

const (
	_ controllerKind = iota
	thenController
	blockController
	loopController
)

type controller struct {
	kind  controllerKind
	task  Task   // used by thenController and loopController
	tasks []Task // used by blockController only
}

func (c *controller) negotiate(co *Coroutine, res Result) Result {
	switch c.kind {
	case thenController:
		if res.action != doEnd {
			return res
		}
		return Result{action: doTailTransition, task: c.task}
	case blockController:
		if res.action != doEnd || len(c.tasks) == 0 {
			return res
		}
		t := c.tasks[0]
		c.tasks = c.tasks[1:]
		action := doTransition
		if len(c.tasks) == 0 {
			action = doTailTransition
		}
		return Result{action: action, task: must(t)}
	case loopController:
		switch res.action {
		case doEnd, doContinue:
			return co.Transition(c.task)
		case doBreak:
			return co.End()
		default:
			return res
		}
	default:
		panic("localsync: internal error: unknown controller")
	}
}
