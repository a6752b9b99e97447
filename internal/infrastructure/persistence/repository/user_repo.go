package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/domain/user"
	"github.com/fraktion/expense-management/pkg/database"
)

// UserRepository implements port.UserDirectory on sqlite. It also exposes
// Create for seeding and administration; the expense core itself only reads.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, name, email, role, organization_id)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		u.ID.String(),
		u.Name,
		u.Email,
		u.Role.String(),
		u.OrganizationID.String(),
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("id", u.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// HasRole reports whether the user exists and holds the given role.
func (r *UserRepository) HasRole(ctx context.Context, userID uuid.UUID, role user.Role) (bool, error) {
	query := `SELECT role FROM users WHERE id = ?`

	var stored string
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, userID.String()).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to query user role", zap.String("id", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to query user role: %w", err)
	}

	return user.Role(stored) == role, nil
}

// IsSameOrganization reports whether the user exists and belongs to the organization.
func (r *UserRepository) IsSameOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	query := `SELECT organization_id FROM users WHERE id = ?`

	var stored string
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, userID.String()).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to query user organization", zap.String("id", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to query user organization: %w", err)
	}

	return stored == orgID.String(), nil
}

// Exists reports whether the user exists.
func (r *UserRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM users WHERE id = ?`

	var one int
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, userID.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query user: %w", err)
	}

	return true, nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	query := `SELECT id, name, email, role, organization_id FROM users WHERE id = ?`

	var (
		u     user.User
		id    string
		role  string
		orgID string
	)
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, userID.String()).Scan(
		&id, &u.Name, &u.Email, &role, &orgID,
	)
	if err == sql.ErrNoRows {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	if u.OrganizationID, err = uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("invalid organization id %q: %w", orgID, err)
	}
	u.Role = user.Role(role)

	return &u, nil
}

func (r *UserRepository) getExecutor(ctx context.Context) executor {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}
