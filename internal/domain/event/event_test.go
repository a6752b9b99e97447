package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	expenseID := uuid.New()
	actorID := uuid.New()

	evt := New(TypeExpenseSubmitted, expenseID, actorID, map[string]interface{}{
		"amount": 125.50,
	})

	require.NotNil(t, evt)
	assert.NotEqual(t, uuid.Nil, evt.ID)
	assert.Equal(t, TypeExpenseSubmitted, evt.Type)
	assert.Equal(t, expenseID, evt.ExpenseID)
	assert.Equal(t, actorID, evt.ActorID)
	assert.False(t, evt.Timestamp.IsZero())
	assert.Equal(t, 125.50, evt.PayloadFloat("amount"))
}

func TestNew_UniqueIDs(t *testing.T) {
	expenseID := uuid.New()
	a := New(TypeExpenseCreated, expenseID, uuid.New(), nil)
	b := New(TypeExpenseCreated, expenseID, uuid.New(), nil)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestPayloadString_MissingOrWrongType(t *testing.T) {
	evt := New(TypeExpenseWithdrawn, uuid.New(), uuid.New(), map[string]interface{}{
		"count": 3,
	})

	assert.Empty(t, evt.PayloadString("missing"))
	assert.Empty(t, evt.PayloadString("count"))
	assert.Equal(t, 3.0, evt.PayloadFloat("count"))
}

func TestPayloadFloat_Conversions(t *testing.T) {
	evt := New(TypeExpenseApproved, uuid.New(), uuid.New(), map[string]interface{}{
		"float": 1.5,
		"int64": int64(2),
		"int":   3,
	})

	assert.Equal(t, 1.5, evt.PayloadFloat("float"))
	assert.Equal(t, 2.0, evt.PayloadFloat("int64"))
	assert.Equal(t, 3.0, evt.PayloadFloat("int"))
	assert.Equal(t, 0.0, evt.PayloadFloat("missing"))
}

func TestType_IsValid(t *testing.T) {
	valid := []Type{
		TypeExpenseCreated,
		TypeExpenseSubmitted,
		TypeExpenseApproved,
		TypeExpenseWithdrawn,
		TypeExpenseRevoked,
	}
	for _, typ := range valid {
		if !typ.IsValid() {
			t.Errorf("expected %s to be valid", typ)
		}
	}

	if Type("expense.unknown").IsValid() {
		t.Error("expected unknown type to be invalid")
	}
}
