package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/domain/organization"
	"github.com/fraktion/expense-management/pkg/database"
)

// OrganizationRepository implements port.OrganizationRepository on sqlite.
type OrganizationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB, logger *zap.Logger) port.OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *organization.Organization) error {
	query := `INSERT INTO organizations (id, name) VALUES (?, ?)`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, org.ID.String(), org.Name)
	if err != nil {
		r.logger.Error("Failed to create organization", zap.String("id", org.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	query := `SELECT id, name FROM organizations WHERE id = ?`

	var (
		org   organization.Organization
		rawID string
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id.String()).Scan(&rawID, &org.Name)
	if err == sql.ErrNoRows {
		return nil, port.ErrOrganizationNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get organization", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if org.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("invalid organization id %q: %w", rawID, err)
	}

	return &org, nil
}

func (r *OrganizationRepository) getExecutor(ctx context.Context) executor {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}
