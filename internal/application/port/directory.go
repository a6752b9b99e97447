package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fraktion/expense-management/internal/domain/user"
)

// ErrUserNotFound is returned when a user does not exist in the directory.
var ErrUserNotFound = errors.New("user not found")

// UserDirectory answers role and organization-membership questions about
// users. It is read-only to the expense core; each call re-queries the
// backing store, so the directory's consistency is the caller's concern.
type UserDirectory interface {
	// HasRole reports whether the user exists and holds the given role.
	HasRole(ctx context.Context, userID uuid.UUID, role user.Role) (bool, error)

	// IsSameOrganization reports whether the user exists and belongs to the
	// given organization.
	IsSameOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error)

	// Exists reports whether the user exists.
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)

	// Get retrieves a user, returning ErrUserNotFound if absent.
	Get(ctx context.Context, userID uuid.UUID) (*user.User, error)
}
