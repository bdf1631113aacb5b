// Package triage defines the claim status workflow. The table is flat:
// every status may move to every other status and none is terminal.
package triage

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"claimsight/internal/claims/models"
	dErrors "claimsight/pkg/domain-errors"
)

// Context carries the claim being triaged through the machine.
type Context struct {
	ClaimID string
}

const (
	statePending       = "Pending"
	stateInvestigation = "Investigation"
	stateApproved      = "Approved"
	stateRejected      = "Rejected"
)

const (
	toPending       = "move_to_Pending"
	toInvestigation = "move_to_Investigation"
	toApproved      = "move_to_Approved"
	toRejected      = "move_to_Rejected"
)

var events = map[models.Status]string{
	models.StatusPending:       toPending,
	models.StatusInvestigation: toInvestigation,
	models.StatusApproved:      toApproved,
	models.StatusRejected:      toRejected,
}

// EventFor names the event that moves a claim to status.
func EventFor(status models.Status) string {
	return events[status]
}

// Machine drives one claim's status.
type Machine struct {
	interpreter *statekit.Interpreter[Context]
}

// New builds the machine positioned at the claim's current status.
func New(claimID string, current models.Status) (*Machine, error) {
	if !current.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("claim has unknown status %q", current))
	}

	builder := statekit.NewMachine[Context]("claim-triage").
		WithInitial(statekit.StateID(current)).
		WithContext(Context{ClaimID: claimID})

	builder.State(statePending).
		On(toInvestigation).Target(stateInvestigation).
		On(toApproved).Target(stateApproved).
		On(toRejected).Target(stateRejected).
		Done()

	builder.State(stateInvestigation).
		On(toPending).Target(statePending).
		On(toApproved).Target(stateApproved).
		On(toRejected).Target(stateRejected).
		Done()

	builder.State(stateApproved).
		On(toPending).Target(statePending).
		On(toInvestigation).Target(stateInvestigation).
		On(toRejected).Target(stateRejected).
		Done()

	builder.State(stateRejected).
		On(toPending).Target(statePending).
		On(toInvestigation).Target(stateInvestigation).
		On(toApproved).Target(stateApproved).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build triage machine: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &Machine{interpreter: interpreter}, nil
}

// Current reports the status the machine is in.
func (m *Machine) Current() models.Status {
	return models.Status(m.interpreter.State().Value)
}

// MoveTo transitions to target. Moving to the current status is a no-op.
func (m *Machine) MoveTo(target models.Status) (models.Status, error) {
	if !target.IsValid() {
		return m.Current(), dErrors.Validation("invalid status", map[string]string{
			"status": "must be one of Pending, Investigation, Approved, Rejected",
		})
	}
	before := m.Current()
	if before == target {
		return before, nil
	}
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(EventFor(target))})
	if after := m.Current(); after != target {
		return after, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("transition from %s to %s was not applied", before, target))
	}
	return target, nil
}

// Transition is a one-shot MoveTo from a known status.
func Transition(claimID string, from, to models.Status) (models.Status, error) {
	m, err := New(claimID, from)
	if err != nil {
		return from, err
	}
	return m.MoveTo(to)
}
