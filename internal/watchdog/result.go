package watchdog

import (
	"time"

	"termwatch/internal/alert"
)

// Phase is a step of the cycle state machine.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhasePolling     Phase = "polling"
	PhaseEvaluating  Phase = "evaluating"
	PhaseDispatching Phase = "dispatching"
	PhaseSleeping    Phase = "sleeping"
	PhaseFailed      Phase = "failed_cycle"
)

// Outcome is what happened to one alert candidate.
type Outcome string

const (
	OutcomeSent           Outcome = "sent"
	OutcomeSuppressed     Outcome = "suppressed"
	OutcomeGateFailed     Outcome = "gate_failed"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
)

// AlertOutcome records the fate of a candidate.
type AlertOutcome struct {
	Key      string
	Kind     alert.Kind
	Priority alert.Priority
	Outcome  Outcome
	Err      error
}

// CycleResult is the explicit result of one cycle. The outer loop consumes it
// and always proceeds to sleep.
type CycleResult struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time

	// Phase is the last phase entered; PhaseFailed when Err is set.
	Phase Phase
	Err   error

	NewIncidents []string
	Alerts       []AlertOutcome
}

// Failed reports whether the cycle aborted before dispatching.
func (r CycleResult) Failed() bool {
	return r.Err != nil
}

// Count returns the number of candidates with the given outcome.
func (r CycleResult) Count(o Outcome) int {
	n := 0
	for _, a := range r.Alerts {
		if a.Outcome == o {
			n++
		}
	}
	return n
}
