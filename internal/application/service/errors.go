package service

import "errors"

// Application-level errors. ErrInvalidSubmitter translates the domain's
// submit-user failure at the layer boundary; ErrInvalidApprover and
// ErrNotPermitted are raised by failed policy checks before any entity
// mutation is attempted.
var (
	// ErrInvalidSubmitter is returned when a user other than the submitter
	// attempts to submit an expense.
	ErrInvalidSubmitter = errors.New("user is not the submitter of the expense")

	// ErrInvalidApprover is returned when the authorization policy denies the
	// approval: self-approval, missing APPROVER role, or wrong organization.
	ErrInvalidApprover = errors.New("user is not permitted to approve the expense")

	// ErrNotPermitted is returned when a user may not list an organization's
	// expenses.
	ErrNotPermitted = errors.New("user is not permitted")
)
