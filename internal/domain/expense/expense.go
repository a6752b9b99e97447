package expense

import (
	"time"

	"github.com/google/uuid"

	"github.com/fraktion/expense-management/internal/domain/lifecycle"
)

// Expense is an organizational expense claim. It owns its lifecycle state and
// the rules for legal transitions; transitions are only applied through the
// Submit, Approve, Withdraw and Revoke methods, each of which validates its
// preconditions in a fixed order and leaves the expense untouched on failure.
//
// Organizational and role authorization is deliberately NOT checked here.
// The entity enforces only the self-approval invariant; the organization and
// role gate lives in the authorization policy consulted by the application
// service before Approve is called.
type Expense struct {
	ID                uuid.UUID       `json:"id"`
	SubmitterID       uuid.UUID       `json:"submitter_id"`
	Title             string          `json:"title"`
	Notes             string          `json:"notes,omitempty"`
	Amount            float64         `json:"amount"`
	Category          Category        `json:"category"`
	Date              time.Time       `json:"date"`
	OrganizationID    uuid.UUID       `json:"organization_id"`
	DocumentReference string          `json:"document_reference,omitempty"`
	State             lifecycle.State `json:"state"`
	ApprovedBy        uuid.UUID       `json:"approved_by,omitempty"`
	DeclineReason     string          `json:"decline_reason,omitempty"`
	RevokeReason      string          `json:"revoke_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewParams holds the attributes of a new expense claim.
type NewParams struct {
	SubmitterID       uuid.UUID
	Title             string
	Date              time.Time
	Amount            float64
	Category          Category
	OrganizationID    uuid.UUID
	Notes             string
	DocumentReference string
}

// New creates an expense claim in DRAFT state with a fresh identifier.
func New(p NewParams) (*Expense, error) {
	if p.Amount < 0 {
		return nil, ErrNegativeAmount
	}
	if !p.Category.IsValid() {
		return nil, ErrUnknownCategory
	}

	now := time.Now().UTC()
	return &Expense{
		ID:                uuid.New(),
		SubmitterID:       p.SubmitterID,
		Title:             p.Title,
		Notes:             p.Notes,
		Amount:            p.Amount,
		Category:          p.Category,
		Date:              p.Date,
		OrganizationID:    p.OrganizationID,
		DocumentReference: p.DocumentReference,
		State:             StateDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Submit moves the expense from DRAFT to SUBMITTED. Only the submitter may
// submit, and the user check precedes the state check.
func (e *Expense) Submit(by uuid.UUID) error {
	if by != e.SubmitterID {
		return ErrInvalidSubmitUser
	}
	if !stateMachine.CanFire(e.State, TriggerSubmit) {
		return ErrExpenseNotDraft
	}

	return e.transition(TriggerSubmit)
}

// Approve moves the expense from SUBMITTED to APPROVED and records the
// approver. The state check precedes the self-approval check.
func (e *Expense) Approve(by uuid.UUID) error {
	if !stateMachine.CanFire(e.State, TriggerApprove) {
		return ErrExpenseNotSubmitted
	}
	if by == e.SubmitterID {
		return ErrInvalidApprover
	}

	if err := e.transition(TriggerApprove); err != nil {
		return err
	}
	e.ApprovedBy = by
	return nil
}

// Withdraw moves the expense to WITHDRAWN. Only the submitter may withdraw,
// and only from DRAFT or SUBMITTED.
func (e *Expense) Withdraw(by uuid.UUID) error {
	if by != e.SubmitterID {
		return ErrInvalidWithdrawUser
	}
	if !stateMachine.CanFire(e.State, TriggerWithdraw) {
		return ErrInvalidWithdrawState
	}

	return e.transition(TriggerWithdraw)
}

// Revoke retracts a previously granted approval, recording the reason. The
// reason check comes first, then the state check, then the approver check.
func (e *Expense) Revoke(by uuid.UUID, reason string) error {
	if reason == "" {
		return ErrMissingReason
	}
	if !stateMachine.CanFire(e.State, TriggerRevoke) {
		return ErrInvalidRevokeState
	}
	if by != e.ApprovedBy {
		return ErrInvalidRevokeUser
	}

	if err := e.transition(TriggerRevoke); err != nil {
		return err
	}
	e.RevokeReason = reason
	return nil
}

// IsTerminal returns true if no further transition is possible.
func (e *Expense) IsTerminal() bool {
	return stateMachine.IsTerminal(e.State)
}

// PermittedTriggers returns the triggers that can fire from the current state.
func (e *Expense) PermittedTriggers() []lifecycle.Trigger {
	return stateMachine.PermittedTriggers(e.State)
}

func (e *Expense) transition(trigger lifecycle.Trigger) error {
	next, err := stateMachine.Fire(e.State, trigger)
	if err != nil {
		return err
	}

	e.State = next
	e.UpdatedAt = time.Now().UTC()
	return nil
}
