// Package policy holds the stateless authorization decision logic for expense
// operations. The expense entity enforces only the self-approval invariant;
// the organizational and role gate lives here and is consulted by the
// application service before the entity transition is attempted.
package policy

import (
	"context"

	"github.com/google/uuid"

	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/domain/user"
)

// Authorizer answers "may this user act on this expense" questions over the
// user directory. It holds no state and caches nothing: every decision
// re-queries the directory.
type Authorizer struct {
	directory port.UserDirectory
}

// NewAuthorizer creates an Authorizer over the given directory.
func NewAuthorizer(directory port.UserDirectory) *Authorizer {
	return &Authorizer{directory: directory}
}

// CanApprove reports whether approverID may approve an expense submitted by
// submitterID in the given organization: never their own expense, only with
// the APPROVER role, and only within their own organization.
func (a *Authorizer) CanApprove(ctx context.Context, submitterID, approverID, organizationID uuid.UUID) (bool, error) {
	if submitterID == approverID {
		return false, nil
	}

	isApprover, err := a.directory.HasRole(ctx, approverID, user.RoleApprover)
	if err != nil {
		return false, err
	}
	if !isApprover {
		return false, nil
	}

	return a.directory.IsSameOrganization(ctx, approverID, organizationID)
}

// CanSubmit reports whether the user may submit expenses: SUBMITTER or
// APPROVER role, a plain disjunction rather than a role hierarchy.
func (a *Authorizer) CanSubmit(ctx context.Context, userID uuid.UUID) (bool, error) {
	isSubmitter, err := a.directory.HasRole(ctx, userID, user.RoleSubmitter)
	if err != nil {
		return false, err
	}
	if isSubmitter {
		return true, nil
	}

	return a.directory.HasRole(ctx, userID, user.RoleApprover)
}

// IsApprover reports whether the user holds the APPROVER role.
func (a *Authorizer) IsApprover(ctx context.Context, userID uuid.UUID) (bool, error) {
	return a.directory.HasRole(ctx, userID, user.RoleApprover)
}

// IsSameOrganization reports whether the user belongs to the organization.
func (a *Authorizer) IsSameOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	return a.directory.IsSameOrganization(ctx, userID, orgID)
}
