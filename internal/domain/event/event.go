package event

import (
	"time"

	"github.com/google/uuid"
)

// Event records something that happened to an expense.
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      Type                   `json:"type"`
	ExpenseID uuid.UUID              `json:"expense_id"`
	ActorID   uuid.UUID              `json:"actor_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// New creates a domain event with a generated ID and timestamp. The
// actor is the user whose action produced the event.
func New(eventType Type, expenseID, actorID uuid.UUID, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		ExpenseID: expenseID,
		ActorID:   actorID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// PayloadString retrieves a string value from the payload.
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// PayloadFloat retrieves a float64 value from the payload.
func (e *Event) PayloadFloat(key string) float64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0.0
}
