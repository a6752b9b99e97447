package expense

import "errors"

// Domain validation errors. Each signals a violated precondition of a single
// transition; the expense is left unchanged when one of these is returned.
var (
	// ErrInvalidSubmitUser is returned when someone other than the submitter
	// attempts to submit the expense.
	ErrInvalidSubmitUser = errors.New("only the submitter may submit the expense")

	// ErrExpenseNotDraft is returned when submitting an expense that is not in DRAFT.
	ErrExpenseNotDraft = errors.New("expense is not in draft state")

	// ErrExpenseNotSubmitted is returned when approving an expense that is not in SUBMITTED.
	ErrExpenseNotSubmitted = errors.New("expense is not in submitted state")

	// ErrInvalidApprover is returned when the submitter attempts to approve
	// their own expense.
	ErrInvalidApprover = errors.New("submitter cannot approve own expense")

	// ErrInvalidWithdrawUser is returned when someone other than the submitter
	// attempts to withdraw the expense.
	ErrInvalidWithdrawUser = errors.New("only the submitter may withdraw the expense")

	// ErrInvalidWithdrawState is returned when withdrawing an expense that is
	// neither DRAFT nor SUBMITTED.
	ErrInvalidWithdrawState = errors.New("expense cannot be withdrawn from its current state")

	// ErrInvalidRevokeState is returned when revoking an expense that is not APPROVED.
	ErrInvalidRevokeState = errors.New("expense is not in approved state")

	// ErrInvalidRevokeUser is returned when someone other than the original
	// approver attempts to revoke the approval.
	ErrInvalidRevokeUser = errors.New("only the original approver may revoke the approval")

	// ErrMissingReason is returned when revoking without a reason.
	ErrMissingReason = errors.New("revoke requires a reason")

	// ErrNegativeAmount is returned when constructing an expense with a
	// negative amount.
	ErrNegativeAmount = errors.New("expense amount must not be negative")

	// ErrUnknownCategory is returned when parsing a category name that is not
	// part of the closed enumeration.
	ErrUnknownCategory = errors.New("unknown expense category")
)
