package expense

import "github.com/fraktion/expense-management/internal/domain/lifecycle"

// Lifecycle states of an expense claim.
const (
	StateDraft     lifecycle.State = "DRAFT"
	StateSubmitted lifecycle.State = "SUBMITTED"
	StateApproved  lifecycle.State = "APPROVED"
	StateWithdrawn lifecycle.State = "WITHDRAWN"
	StateRevoked   lifecycle.State = "REVOKED"
)

// Triggers that move an expense between lifecycle states.
const (
	TriggerSubmit   lifecycle.Trigger = "SUBMIT"
	TriggerApprove  lifecycle.Trigger = "APPROVE"
	TriggerWithdraw lifecycle.Trigger = "WITHDRAW"
	TriggerRevoke   lifecycle.Trigger = "REVOKE"
)

var validStates = map[lifecycle.State]bool{
	StateDraft:     true,
	StateSubmitted: true,
	StateApproved:  true,
	StateWithdrawn: true,
	StateRevoked:   true,
}

// IsValidState returns true if s is one of the five expense lifecycle states.
func IsValidState(s lifecycle.State) bool {
	return validStates[s]
}

// stateMachine is the shared transition table for every expense. WITHDRAWN and
// REVOKED configure no outgoing transitions and are therefore terminal.
var stateMachine = buildStateMachine()

func buildStateMachine() lifecycle.Machine {
	builder := lifecycle.NewBuilder()

	builder.Configure(StateDraft).
		Permit(TriggerSubmit, StateSubmitted).
		Permit(TriggerWithdraw, StateWithdrawn)

	builder.Configure(StateSubmitted).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerWithdraw, StateWithdrawn)

	builder.Configure(StateApproved).
		Permit(TriggerRevoke, StateRevoked)

	return builder.Build()
}
