package organization

import "github.com/google/uuid"

// Organization groups users and expenses. Expenses reference it by identifier
// only, keeping the aggregates decoupled.
type Organization struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
