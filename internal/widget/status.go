package widget

import "sync"

// Phase is the lifecycle stage of the current turn.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseStreaming
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseStreaming:
		return "streaming"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// StatusProjector folds turn events into the single status line. An empty
// status means idle.
type StatusProjector struct {
	mu       sync.Mutex
	phase    Phase
	message  string
	observer func(string)
}

// NewStatusProjector returns an idle projector. observer, if set, receives
// every status change.
func NewStatusProjector(observer func(string)) *StatusProjector {
	return &StatusProjector{observer: observer}
}

// Status returns the text to display, "" when idle or streaming.
func (s *StatusProjector) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Phase returns the current lifecycle stage.
func (s *StatusProjector) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// InFlight reports whether a turn is sending or streaming.
func (s *StatusProjector) InFlight() bool {
	p := s.Phase()
	return p == PhaseSending || p == PhaseStreaming
}

// Begin enters sending as soon as a user message is accepted.
func (s *StatusProjector) Begin() {
	s.set(PhaseSending, StatusThinking)
}

// FirstFragment leaves sending once the reply starts to show up.
func (s *StatusProjector) FirstFragment() {
	s.transition(PhaseSending, PhaseStreaming, "")
}

// Finish ends the turn successfully.
func (s *StatusProjector) Finish() {
	s.set(PhaseIdle, "")
}

// Fail ends the turn with a user-facing error.
func (s *StatusProjector) Fail(err error) {
	s.set(PhaseErrored, StatusText(err))
}

// InputEdited clears a stale error. It has no effect while a turn is in flight.
func (s *StatusProjector) InputEdited() {
	s.transition(PhaseErrored, PhaseIdle, "")
}

// transition moves from -> to atomically and is a no-op in any other phase.
func (s *StatusProjector) transition(from, to Phase, message string) {
	s.mu.Lock()
	if s.phase != from {
		s.mu.Unlock()
		return
	}
	s.apply(to, message)
}

func (s *StatusProjector) set(phase Phase, message string) {
	s.mu.Lock()
	s.apply(phase, message)
}

// apply must be called with s.mu held and releases it.
func (s *StatusProjector) apply(phase Phase, message string) {
	changed := s.message != message
	s.phase = phase
	s.message = message
	observer := s.observer
	s.mu.Unlock()

	if changed && observer != nil {
		observer(message)
	}
}
