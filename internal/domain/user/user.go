package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed enumeration of user roles.
type Role string

const (
	RoleSubmitter Role = "SUBMITTER"
	RoleApprover  Role = "APPROVER"
	RoleAdmin     Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleSubmitter: true,
	RoleApprover:  true,
	RoleAdmin:     true,
}

// ErrUnknownRole is returned when parsing a role name outside the enumeration.
var ErrUnknownRole = errors.New("unknown user role")

// ParseRole validates a role name against the closed enumeration.
func ParseRole(name string) (Role, error) {
	role := Role(name)
	if !validRoles[role] {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return role, nil
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// User is a member of an organization. The expense core never mutates users;
// it only reads role and organization membership through the directory port.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	OrganizationID uuid.UUID `json:"organization_id"`
}
