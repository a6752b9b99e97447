package event

// Type identifies the type of domain event
type Type string

const (
	TypeExpenseCreated   Type = "expense.created"
	TypeExpenseSubmitted Type = "expense.submitted"
	TypeExpenseApproved  Type = "expense.approved"
	TypeExpenseWithdrawn Type = "expense.withdrawn"
	TypeExpenseRevoked   Type = "expense.revoked"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeExpenseCreated,
		TypeExpenseSubmitted,
		TypeExpenseApproved,
		TypeExpenseWithdrawn,
		TypeExpenseRevoked:
		return true
	default:
		return false
	}
}
