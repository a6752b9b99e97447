package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fraktion/expense-management/internal/application/dispatcher"
	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/domain/event"
	"github.com/fraktion/expense-management/internal/domain/expense"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Authorizer is the policy consulted before approval and organization-wide
// listing. It supplies the organizational and role gate the entity itself
// does not perform.
type Authorizer interface {
	CanApprove(ctx context.Context, submitterID, approverID, organizationID uuid.UUID) (bool, error)
	CanSubmit(ctx context.Context, userID uuid.UUID) (bool, error)
	IsApprover(ctx context.Context, userID uuid.UUID) (bool, error)
	IsSameOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
}

// CreateExpenseParams holds the caller-supplied attributes of a new expense.
// Category arrives as a plain name and is validated against the closed
// enumeration here, at the application boundary.
type CreateExpenseParams struct {
	SubmitterID       uuid.UUID
	Title             string
	Date              time.Time
	Amount            float64
	Category          string
	OrganizationID    uuid.UUID
	Notes             string
	DocumentReference string
}

// ExpenseService orchestrates expense lifecycle operations: load the expense,
// consult the policy where required, apply the entity transition, persist.
// Each mutating operation performs at most one load and one save; the list
// operations never save.
type ExpenseService interface {
	CreateExpense(ctx context.Context, params CreateExpenseParams) (*expense.Expense, error)
	GetExpense(ctx context.Context, expenseID uuid.UUID) (*expense.Expense, error)
	SubmitExpense(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error)
	WithdrawExpense(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error)
	ApproveExpense(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error)
	RevokeApproval(ctx context.Context, userID, expenseID uuid.UUID, reason string) (*expense.Expense, error)
	FindExpensesByUser(ctx context.Context, userID uuid.UUID) ([]*expense.Expense, error)
	GetExpensesForOrganization(ctx context.Context, userID, orgID uuid.UUID) ([]*expense.Expense, error)
}

type expenseServiceImpl struct {
	expenseRepo port.ExpenseRepository
	authorizer  Authorizer
	logger      Logger
	events      dispatcher.Dispatcher
	tx          port.Transactor
}

// Option configures the expense service
type Option func(*expenseServiceImpl)

// WithEventDispatcher publishes a domain event after every successful
// lifecycle mutation. Event delivery is asynchronous and never fails
// the operation that produced it.
func WithEventDispatcher(d dispatcher.Dispatcher) Option {
	return func(s *expenseServiceImpl) {
		s.events = d
	}
}

// WithTransactor runs each mutation's load and save in one storage
// transaction, so a failed save rolls the whole operation back.
func WithTransactor(tx port.Transactor) Option {
	return func(s *expenseServiceImpl) {
		s.tx = tx
	}
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	authorizer Authorizer,
	logger Logger,
	opts ...Option,
) ExpenseService {
	s := &expenseServiceImpl{
		expenseRepo: expenseRepo,
		authorizer:  authorizer,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inTransaction wraps fn in a transaction when a transactor is
// configured, and runs it directly otherwise.
func (s *expenseServiceImpl) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithTransaction(ctx, fn)
}

// publish emits a lifecycle event when a dispatcher is configured.
func (s *expenseServiceImpl) publish(ctx context.Context, eventType event.Type, e *expense.Expense, actorID uuid.UUID) {
	if s.events == nil {
		return
	}
	evt := event.New(eventType, e.ID, actorID, map[string]interface{}{
		"state":           string(e.State),
		"amount":          e.Amount,
		"organization_id": e.OrganizationID.String(),
	})
	s.events.DispatchAsync(ctx, evt)
}

// CreateExpense constructs a DRAFT expense and persists it. Authorization
// beyond what the API layer enforces is not required for drafts.
func (s *expenseServiceImpl) CreateExpense(ctx context.Context, params CreateExpenseParams) (*expense.Expense, error) {
	category, err := expense.ParseCategory(params.Category)
	if err != nil {
		return nil, err
	}

	e, err := expense.New(expense.NewParams{
		SubmitterID:       params.SubmitterID,
		Title:             params.Title,
		Date:              params.Date,
		Amount:            params.Amount,
		Category:          category,
		OrganizationID:    params.OrganizationID,
		Notes:             params.Notes,
		DocumentReference: params.DocumentReference,
	})
	if err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.expenseRepo.Save(ctx, e); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeExpenseCreated, e, params.SubmitterID)
	s.logger.Info("Expense created",
		"expense_id", e.ID.String(),
		"submitter_id", e.SubmitterID.String(),
		"organization_id", e.OrganizationID.String(),
	)
	return e, nil
}

// GetExpense retrieves a single expense.
func (s *expenseServiceImpl) GetExpense(ctx context.Context, expenseID uuid.UUID) (*expense.Expense, error) {
	return s.expenseRepo.Get(ctx, expenseID)
}

// SubmitExpense submits a draft expense on behalf of userID. The domain's
// submit-user failure is translated into the service-level ErrInvalidSubmitter
// at this boundary; all other domain errors propagate unchanged.
func (s *expenseServiceImpl) SubmitExpense(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error) {
	var e *expense.Expense
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.expenseRepo.Get(ctx, expenseID)
		if err != nil {
			return err
		}

		if err := e.Submit(userID); err != nil {
			if errors.Is(err, expense.ErrInvalidSubmitUser) {
				return ErrInvalidSubmitter
			}
			return err
		}

		if err := s.expenseRepo.Save(ctx, e); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeExpenseSubmitted, e, userID)
	s.logger.Info("Expense submitted", "expense_id", e.ID.String(), "user_id", userID.String())
	return e, nil
}

// WithdrawExpense withdraws a draft or submitted expense. Domain errors
// propagate unmodified.
func (s *expenseServiceImpl) WithdrawExpense(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error) {
	var e *expense.Expense
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.expenseRepo.Get(ctx, expenseID)
		if err != nil {
			return err
		}

		if err := e.Withdraw(userID); err != nil {
			return err
		}

		if err := s.expenseRepo.Save(ctx, e); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeExpenseWithdrawn, e, userID)
	s.logger.Info("Expense withdrawn", "expense_id", e.ID.String(), "user_id", userID.String())
	return e, nil
}

// ApproveExpense approves a submitted expense. The policy check runs before
// the entity transition: a denial fails with ErrInvalidApprover without
// touching the expense. The entity still enforces its own self-approval
// invariant when the transition is applied.
func (s *expenseServiceImpl) ApproveExpense(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error) {
	var e *expense.Expense
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.expenseRepo.Get(ctx, expenseID)
		if err != nil {
			return err
		}

		allowed, err := s.authorizer.CanApprove(ctx, e.SubmitterID, userID, e.OrganizationID)
		if err != nil {
			return fmt.Errorf("authorize approval: %w", err)
		}
		if !allowed {
			s.logger.Info("Approval denied by policy",
				"expense_id", e.ID.String(),
				"user_id", userID.String(),
			)
			return ErrInvalidApprover
		}

		if err := e.Approve(userID); err != nil {
			return err
		}

		if err := s.expenseRepo.Save(ctx, e); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeExpenseApproved, e, userID)
	s.logger.Info("Expense approved", "expense_id", e.ID.String(), "approved_by", userID.String())
	return e, nil
}

// RevokeApproval retracts a granted approval with a reason. Domain errors
// propagate unmodified.
func (s *expenseServiceImpl) RevokeApproval(ctx context.Context, userID, expenseID uuid.UUID, reason string) (*expense.Expense, error) {
	var e *expense.Expense
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.expenseRepo.Get(ctx, expenseID)
		if err != nil {
			return err
		}

		if err := e.Revoke(userID, reason); err != nil {
			return err
		}

		if err := s.expenseRepo.Save(ctx, e); err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeExpenseRevoked, e, userID)
	s.logger.Info("Approval revoked", "expense_id", e.ID.String(), "user_id", userID.String())
	return e, nil
}

// FindExpensesByUser lists expenses where the user is submitter or approver.
func (s *expenseServiceImpl) FindExpensesByUser(ctx context.Context, userID uuid.UUID) ([]*expense.Expense, error) {
	return s.expenseRepo.FindByUser(ctx, userID)
}

// GetExpensesForOrganization lists an organization's expenses. The caller
// must hold the APPROVER role and belong to the organization.
func (s *expenseServiceImpl) GetExpensesForOrganization(ctx context.Context, userID, orgID uuid.UUID) ([]*expense.Expense, error) {
	isApprover, err := s.authorizer.IsApprover(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authorize listing: %w", err)
	}
	sameOrg, err := s.authorizer.IsSameOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("authorize listing: %w", err)
	}
	if !isApprover || !sameOrg {
		return nil, ErrNotPermitted
	}

	return s.expenseRepo.FindByOrganization(ctx, orgID)
}
