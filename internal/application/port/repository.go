package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fraktion/expense-management/internal/domain/expense"
	"github.com/fraktion/expense-management/internal/domain/organization"
)

// Lookup errors raised by repository collaborators. They propagate unchanged
// through the application service; the API layer maps them to not-found
// responses.
var (
	// ErrNoExpenseFound is returned when an expense does not exist, or when a
	// finder matches no rows. Empty result and missing row are deliberately
	// indistinguishable to callers.
	ErrNoExpenseFound = errors.New("no expense found")

	// ErrOrganizationNotFound is returned when an organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
)

// ExpenseRepository defines persistence operations for Expense.
type ExpenseRepository interface {
	// Get retrieves an expense by its identifier.
	Get(ctx context.Context, id uuid.UUID) (*expense.Expense, error)

	// Save persists the expense, creating it or replacing the stored row.
	Save(ctx context.Context, e *expense.Expense) error

	// FindByOrganization retrieves all expenses of an organization. Returns
	// ErrNoExpenseFound when the organization has no expenses.
	FindByOrganization(ctx context.Context, orgID uuid.UUID) ([]*expense.Expense, error)

	// FindByUser retrieves all expenses where the user is submitter or
	// approver. Returns ErrNoExpenseFound when there are none.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*expense.Expense, error)
}

// OrganizationRepository defines persistence operations for Organization.
type OrganizationRepository interface {
	Create(ctx context.Context, org *organization.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error)
}
