package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent is a phase boundary. Elapsed, Note and Err are set on PhaseEnd.
type PhaseEvent struct {
	Unit    string // file path or function name
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Note    string
	Err     error
}

// PhaseObserver receives phase boundaries. RunFiles calls it from several
// goroutines at once.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) notify(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}
