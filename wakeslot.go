package localsync

// A WakeSlot holds at most one suspended [Coroutine] waiting to be woken.
//
// A WakeSlot is in one of three states: empty, registered (holding one
// coroutine) or woken (a wake arrived while nobody was registered).
// Registering while another coroutine is registered replaces it; the
// replaced coroutine is treated as gone and is never woken through s.
// A wake that arrives while s is empty is kept as a pending flag, so that
// the next registrant resumes right away instead of suspending.
//
// WakeSlot implements [Event]. Watching a WakeSlot registers the watching
// coroutine; the registration is dropped on every path by which the
// coroutine stops watching, including cancellation.
//
// The zero value is an empty WakeSlot ready to use.
// A WakeSlot must not be shared by more than one [Executor].
type WakeSlot struct {
	co      *Coroutine
	pending bool
}

func (s *WakeSlot) addListener(co *Coroutine) {
	s.Register(co)
}

func (s *WakeSlot) removeListener(co *Coroutine) {
	s.Unregister(co)
}

// Register stores co in s, replacing any prior registrant.
//
// If a wake is pending, Register consumes it, resumes co immediately and
// stores nothing; it then reports true.
func (s *WakeSlot) Register(co *Coroutine) (woken bool) {
	if s.pending {
		s.pending = false
		co.Resume()
		return true
	}
	s.co = co
	return false
}

// Unregister clears s if co is its registrant.
func (s *WakeSlot) Unregister(co *Coroutine) {
	if s.co == co {
		s.co = nil
	}
}

// Wake resumes the registrant of s and clears s.
// If nobody is registered, Wake marks s as woken instead.
func (s *WakeSlot) Wake() {
	co := s.co
	if co == nil {
		s.pending = true
		return
	}
	s.co = nil
	co.Resume()
}

// TakePending clears the pending wake of s and reports whether there was one.
func (s *WakeSlot) TakePending() bool {
	pending := s.pending
	s.pending = false
	return pending
}

// Registered reports whether a coroutine is registered in s.
func (s *WakeSlot) Registered() bool {
	return s.co != nil
}

// reset drops both the registrant and any pending wake.
func (s *WakeSlot) reset() {
	s.co = nil
	s.pending = false
}

// Await returns a [PendingResult] that will cause co to yield until s is
// woken. Transform it with one of its methods, e.g. Reiterate, to decide
// what co does on resumption.
func (s *WakeSlot) Await(co *Coroutine) PendingResult {
	return co.Await(s)
}
