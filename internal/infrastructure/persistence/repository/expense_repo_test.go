package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/domain/expense"
	"github.com/fraktion/expense-management/internal/domain/organization"
	"github.com/fraktion/expense-management/internal/domain/user"
	"github.com/fraktion/expense-management/pkg/database"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.Run())

	return db
}

func newStoredExpense(t *testing.T, orgID uuid.UUID) *expense.Expense {
	t.Helper()

	e, err := expense.New(expense.NewParams{
		SubmitterID:       uuid.New(),
		Title:             "Pens",
		Date:              time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:            100,
		Category:          expense.CategoryOfficeSupplies,
		OrganizationID:    orgID,
		Notes:             "box of pens",
		DocumentReference: "receipt-42",
	})
	require.NoError(t, err)
	return e
}

func TestExpenseRepository_SaveAndGetRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	e := newStoredExpense(t, uuid.New())
	require.NoError(t, repo.Save(ctx, e))

	loaded, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, e.ID, loaded.ID)
	assert.Equal(t, e.SubmitterID, loaded.SubmitterID)
	assert.Equal(t, e.Title, loaded.Title)
	assert.Equal(t, e.Notes, loaded.Notes)
	assert.Equal(t, e.Amount, loaded.Amount)
	assert.Equal(t, e.Category, loaded.Category)
	assert.True(t, e.Date.Equal(loaded.Date))
	assert.Equal(t, e.OrganizationID, loaded.OrganizationID)
	assert.Equal(t, e.DocumentReference, loaded.DocumentReference)
	assert.Equal(t, e.State, loaded.State)
	assert.Equal(t, e.ApprovedBy, loaded.ApprovedBy)
	assert.Equal(t, e.RevokeReason, loaded.RevokeReason)
}

func TestExpenseRepository_SaveUpdatesExistingRow(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	e := newStoredExpense(t, uuid.New())
	require.NoError(t, repo.Save(ctx, e))

	require.NoError(t, e.Submit(e.SubmitterID))
	approver := uuid.New()
	require.NoError(t, e.Approve(approver))
	require.NoError(t, repo.Save(ctx, e))

	loaded, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StateApproved, loaded.State)
	assert.Equal(t, approver, loaded.ApprovedBy)
}

func TestExpenseRepository_GetMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, port.ErrNoExpenseFound)
}

func TestExpenseRepository_FindByOrganization(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	orgID := uuid.New()
	first := newStoredExpense(t, orgID)
	second := newStoredExpense(t, orgID)
	other := newStoredExpense(t, uuid.New())
	for _, e := range []*expense.Expense{first, second, other} {
		require.NoError(t, repo.Save(ctx, e))
	}

	found, err := repo.FindByOrganization(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestExpenseRepository_FindByOrganizationEmpty(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	_, err := repo.FindByOrganization(context.Background(), uuid.New())
	assert.ErrorIs(t, err, port.ErrNoExpenseFound)
}

func TestExpenseRepository_FindByUserMatchesSubmitterAndApprover(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	orgID := uuid.New()
	approver := uuid.New()

	submitted := newStoredExpense(t, orgID)
	require.NoError(t, submitted.Submit(submitted.SubmitterID))
	require.NoError(t, submitted.Approve(approver))
	require.NoError(t, repo.Save(ctx, submitted))

	unrelated := newStoredExpense(t, orgID)
	require.NoError(t, repo.Save(ctx, unrelated))

	bySubmitter, err := repo.FindByUser(ctx, submitted.SubmitterID)
	require.NoError(t, err)
	assert.Len(t, bySubmitter, 1)

	byApprover, err := repo.FindByUser(ctx, approver)
	require.NoError(t, err)
	assert.Len(t, byApprover, 1)
	assert.Equal(t, submitted.ID, byApprover[0].ID)

	_, err = repo.FindByUser(ctx, uuid.New())
	assert.ErrorIs(t, err, port.ErrNoExpenseFound)
}

func TestUserRepository_DirectoryQueries(t *testing.T) {
	db := setupDB(t)
	orgRepo := NewOrganizationRepository(db.DB, zap.NewNop())
	userRepo := NewUserRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	orgID := uuid.New()
	require.NoError(t, orgRepo.Create(ctx, &organization.Organization{ID: orgID, Name: "FraktionA"}))

	u := &user.User{
		ID:             uuid.New(),
		Name:           "Alex",
		Email:          "alex@example.com",
		Role:           user.RoleApprover,
		OrganizationID: orgID,
	}
	require.NoError(t, userRepo.Create(ctx, u))

	hasRole, err := userRepo.HasRole(ctx, u.ID, user.RoleApprover)
	require.NoError(t, err)
	assert.True(t, hasRole)

	hasRole, err = userRepo.HasRole(ctx, u.ID, user.RoleSubmitter)
	require.NoError(t, err)
	assert.False(t, hasRole)

	hasRole, err = userRepo.HasRole(ctx, uuid.New(), user.RoleApprover)
	require.NoError(t, err)
	assert.False(t, hasRole)

	sameOrg, err := userRepo.IsSameOrganization(ctx, u.ID, orgID)
	require.NoError(t, err)
	assert.True(t, sameOrg)

	sameOrg, err = userRepo.IsSameOrganization(ctx, u.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, sameOrg)

	exists, err := userRepo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := userRepo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, loaded.Email)

	_, err = userRepo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}

func TestOrganizationRepository_GetMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewOrganizationRepository(db.DB, zap.NewNop())

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, port.ErrOrganizationNotFound)
}

func TestExpenseRepository_SaveWithinTransaction(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	e := newStoredExpense(t, uuid.New())
	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		return repo.Save(ctx, e)
	})
	require.NoError(t, err)

	loaded, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, loaded.ID)
}

func TestExpenseRepository_TransactionRollsBackOnError(t *testing.T) {
	db := setupDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	e := newStoredExpense(t, uuid.New())
	failure := errors.New("post-save check failed")
	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		if err := repo.Save(ctx, e); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	_, err = repo.Get(ctx, e.ID)
	assert.ErrorIs(t, err, port.ErrNoExpenseFound, "rolled-back save must not persist")
}
