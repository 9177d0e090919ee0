package dbt

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Phase is a step of a single version resolution.
type Phase string

// Resolution phases. Resolved and Aborted are terminal.
const (
	PhaseDetecting   Phase = stateDetecting
	PhaseParsing     Phase = stateParsing
	PhaseMatching    Phase = stateMatching
	PhaseNegotiating Phase = stateNegotiating
	PhaseResolved    Phase = stateResolved
	PhaseAborted     Phase = stateAborted
)

// Terminal reports whether the phase ends a resolution.
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseAborted
}

const (
	stateDetecting   = "detecting"
	stateParsing     = "parsing"
	stateMatching    = "matching"
	stateNegotiating = "negotiating"
	stateResolved    = "resolved"
	stateAborted     = "aborted"
)

// Events for the resolution state machine.
const (
	eventProbed       = "PROBED"
	eventProbeFailed  = "PROBE_FAILED"
	eventParsed       = "PARSED"
	eventMatched      = "MATCHED"
	eventAcknowledged = "ACKNOWLEDGED"
	eventUnmatched    = "UNMATCHED"
	eventAccepted     = "ACCEPTED"
	eventRejected     = "REJECTED"
	eventFailed       = "FAILED"
	eventReset        = "RESET"
)

type lifecycleContext struct{}

// lifecycle tracks the phase of the current resolution. One lifecycle
// lives on a Session and is reset to detecting at the start of each call.
type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

func newLifecycle() (*lifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("dbt-version-resolution").
		WithInitial(stateDetecting).
		WithContext(lifecycleContext{}).
		State(stateDetecting).
		On(eventProbed).Target(stateParsing).
		On(eventProbeFailed).Target(stateAborted).Done().
		State(stateParsing).
		On(eventParsed).Target(stateMatching).Done().
		State(stateMatching).
		On(eventMatched).Target(stateResolved).
		On(eventAcknowledged).Target(stateResolved).
		On(eventUnmatched).Target(stateNegotiating).Done().
		State(stateNegotiating).
		On(eventAccepted).Target(stateResolved).
		On(eventRejected).Target(stateAborted).
		On(eventFailed).Target(stateAborted).Done().
		State(stateResolved).
		On(eventReset).Target(stateDetecting).Done().
		State(stateAborted).
		On(eventReset).Target(stateDetecting).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("build resolution state machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp}, nil
}

func (l *lifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (l *lifecycle) phase() Phase {
	return Phase(l.interp.State().Value)
}

// begin returns the machine to detecting after a finished resolution.
func (l *lifecycle) begin() {
	if l.phase().Terminal() {
		l.send(eventReset)
	}
}
