package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/domain/expense"
	"github.com/fraktion/expense-management/internal/domain/lifecycle"
	"github.com/fraktion/expense-management/pkg/database"
)

// ExpenseRepository implements port.ExpenseRepository on sqlite.
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `
	id, submitter_id, title, notes, amount, category, date,
	organization_id, document_reference, state, approved_by,
	decline_reason, revoke_reason, created_at, updated_at
`

// Get retrieves an expense by ID
func (r *ExpenseRepository) Get(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	row := r.getExecutor(ctx).QueryRowContext(ctx, query, id.String())
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, port.ErrNoExpenseFound
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// Save persists the expense, inserting or replacing the stored row. The
// per-row serialization of concurrent writers is left to sqlite.
func (r *ExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			notes = excluded.notes,
			amount = excluded.amount,
			category = excluded.category,
			date = excluded.date,
			document_reference = excluded.document_reference,
			state = excluded.state,
			approved_by = excluded.approved_by,
			decline_reason = excluded.decline_reason,
			revoke_reason = excluded.revoke_reason,
			updated_at = excluded.updated_at
	`

	var approvedBy sql.NullString
	if e.ApprovedBy != uuid.Nil {
		approvedBy = sql.NullString{String: e.ApprovedBy.String(), Valid: true}
	}

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		e.ID.String(),
		e.SubmitterID.String(),
		e.Title,
		e.Notes,
		e.Amount,
		e.Category.String(),
		e.Date,
		e.OrganizationID.String(),
		e.DocumentReference,
		e.State.String(),
		approvedBy,
		e.DeclineReason,
		e.RevokeReason,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save expense", zap.String("id", e.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to save expense: %w", err)
	}

	return nil
}

// FindByOrganization retrieves all expenses for an organization
func (r *ExpenseRepository) FindByOrganization(ctx context.Context, orgID uuid.UUID) ([]*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE organization_id = ? ORDER BY created_at`

	return r.queryExpenses(ctx, query, orgID.String())
}

// FindByUser retrieves all expenses where the user is submitter or approver
func (r *ExpenseRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE submitter_id = ? OR approved_by = ? ORDER BY created_at`

	return r.queryExpenses(ctx, query, userID.String(), userID.String())
}

func (r *ExpenseRepository) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]*expense.Expense, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Empty result signals ErrNoExpenseFound, matching the Get contract
	if len(expenses) == 0 {
		return nil, port.ErrNoExpenseFound
	}

	return expenses, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row scanner) (*expense.Expense, error) {
	var (
		e          expense.Expense
		id         string
		submitter  string
		category   string
		orgID      string
		state      string
		approvedBy sql.NullString
	)

	err := row.Scan(
		&id,
		&submitter,
		&e.Title,
		&e.Notes,
		&e.Amount,
		&category,
		&e.Date,
		&orgID,
		&e.DocumentReference,
		&state,
		&approvedBy,
		&e.DeclineReason,
		&e.RevokeReason,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid expense id %q: %w", id, err)
	}
	if e.SubmitterID, err = uuid.Parse(submitter); err != nil {
		return nil, fmt.Errorf("invalid submitter id %q: %w", submitter, err)
	}
	if e.OrganizationID, err = uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("invalid organization id %q: %w", orgID, err)
	}
	if approvedBy.Valid {
		if e.ApprovedBy, err = uuid.Parse(approvedBy.String); err != nil {
			return nil, fmt.Errorf("invalid approver id %q: %w", approvedBy.String, err)
		}
	}

	e.Category = expense.Category(category)
	e.State = lifecycle.State(state)

	return &e, nil
}

// getExecutor routes statements through an enclosing transaction when the
// context carries one.
func (r *ExpenseRepository) getExecutor(ctx context.Context) executor {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
