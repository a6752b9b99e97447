package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraktion/expense-management/internal/application/policy"
	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/application/service"
	"github.com/fraktion/expense-management/internal/domain/expense"
	"github.com/fraktion/expense-management/internal/domain/user"
)

type memExpenseRepo struct {
	expenses map[uuid.UUID]*expense.Expense
}

func (r *memExpenseRepo) Get(_ context.Context, id uuid.UUID) (*expense.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, port.ErrNoExpenseFound
	}
	copied := *e
	return &copied, nil
}

func (r *memExpenseRepo) Save(_ context.Context, e *expense.Expense) error {
	copied := *e
	r.expenses[e.ID] = &copied
	return nil
}

func (r *memExpenseRepo) FindByOrganization(_ context.Context, orgID uuid.UUID) ([]*expense.Expense, error) {
	var result []*expense.Expense
	for _, e := range r.expenses {
		if e.OrganizationID == orgID {
			result = append(result, e)
		}
	}
	if len(result) == 0 {
		return nil, port.ErrNoExpenseFound
	}
	return result, nil
}

func (r *memExpenseRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*expense.Expense, error) {
	var result []*expense.Expense
	for _, e := range r.expenses {
		if e.SubmitterID == userID || e.ApprovedBy == userID {
			result = append(result, e)
		}
	}
	if len(result) == 0 {
		return nil, port.ErrNoExpenseFound
	}
	return result, nil
}

type memDirectory struct {
	users map[uuid.UUID]*user.User
}

func (d *memDirectory) HasRole(_ context.Context, userID uuid.UUID, role user.Role) (bool, error) {
	u, ok := d.users[userID]
	return ok && u.Role == role, nil
}

func (d *memDirectory) IsSameOrganization(_ context.Context, userID, orgID uuid.UUID) (bool, error) {
	u, ok := d.users[userID]
	return ok && u.OrganizationID == orgID, nil
}

func (d *memDirectory) Exists(_ context.Context, userID uuid.UUID) (bool, error) {
	_, ok := d.users[userID]
	return ok, nil
}

func (d *memDirectory) Get(_ context.Context, userID uuid.UUID) (*user.User, error) {
	u, ok := d.users[userID]
	if !ok {
		return nil, port.ErrUserNotFound
	}
	return u, nil
}

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type testEnv struct {
	server    *Server
	orgID     uuid.UUID
	submitter *user.User
	approver  *user.User
}

func newTestEnv() *testEnv {
	orgID := uuid.New()
	submitter := &user.User{ID: uuid.New(), Name: "s", Email: "s@example.com", Role: user.RoleSubmitter, OrganizationID: orgID}
	approver := &user.User{ID: uuid.New(), Name: "a", Email: "a@example.com", Role: user.RoleApprover, OrganizationID: orgID}

	repo := &memExpenseRepo{expenses: make(map[uuid.UUID]*expense.Expense)}
	directory := &memDirectory{users: map[uuid.UUID]*user.User{
		submitter.ID: submitter,
		approver.ID:  approver,
	}}

	svc := service.NewExpenseService(repo, policy.NewAuthorizer(directory), testLogger{})
	server := NewServer(DefaultServerConfig(), svc, testLogger{})

	return &testEnv{
		server:    server,
		orgID:     orgID,
		submitter: submitter,
		approver:  approver,
	}
}

func (env *testEnv) request(t *testing.T, method, path string, actor uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != uuid.Nil {
		req.Header.Set("X-User-ID", actor.String())
	}

	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createExpense(t *testing.T) uuid.UUID {
	t.Helper()

	rec := env.request(t, http.MethodPost, "/api/expenses", env.submitter.ID, jsonBody{
		"title":           "Pens",
		"date":            time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"amount":          100,
		"category":        "OFFICE_SUPPLIES",
		"organization_id": env.orgID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created expense.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

type jsonBody map[string]interface{}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, "/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateExpense_RequiresActingUser(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodPost, "/api/expenses", uuid.Nil, jsonBody{"title": "Pens"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodPost, "/api/expenses", env.submitter.ID, jsonBody{
		"title":           "Chairs",
		"date":            time.Now().UTC().Format(time.RFC3339),
		"amount":          50,
		"category":        "FURNITURE",
		"organization_id": env.orgID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenseLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv()
	expenseID := env.createExpense(t)

	// Submit as submitter
	rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/submit", expenseID), env.submitter.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Approve as approver from the same organization
	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/approve", expenseID), env.approver.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var approved expense.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &approved))
	assert.Equal(t, expense.StateApproved, approved.State)
	assert.Equal(t, env.approver.ID, approved.ApprovedBy)

	// Revoke with a reason
	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/revoke", expenseID), env.approver.ID, jsonBody{"reason": "duplicate claim"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var revoked expense.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revoked))
	assert.Equal(t, expense.StateRevoked, revoked.State)
	assert.Equal(t, "duplicate claim", revoked.RevokeReason)
}

func TestSubmitExpense_WrongUserForbidden(t *testing.T) {
	env := newTestEnv()
	expenseID := env.createExpense(t)

	rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/submit", expenseID), env.approver.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApproveExpense_SelfApprovalForbidden(t *testing.T) {
	env := newTestEnv()
	expenseID := env.createExpense(t)

	rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/submit", expenseID), env.submitter.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/approve", expenseID), env.submitter.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDoubleSubmitConflicts(t *testing.T) {
	env := newTestEnv()
	expenseID := env.createExpense(t)

	rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/submit", expenseID), env.submitter.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/submit", expenseID), env.submitter.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRevoke_MissingReasonBadRequest(t *testing.T) {
	env := newTestEnv()
	expenseID := env.createExpense(t)

	rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/submit", expenseID), env.submitter.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/approve", expenseID), env.approver.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/revoke", expenseID), env.approver.ID, jsonBody{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExpense_NotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/expenses/%s", uuid.New()), uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrganizationExpenses_Authorization(t *testing.T) {
	env := newTestEnv()
	expenseID := env.createExpense(t)
	_ = expenseID

	// Approver of the organization may list
	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/organizations/%s/expenses", env.orgID), env.approver.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Submitter may not
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/organizations/%s/expenses", env.orgID), env.submitter.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUserExpenses(t *testing.T) {
	env := newTestEnv()
	env.createExpense(t)

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%s/expenses", env.submitter.ID), uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Empty result surfaces as not found, matching the repository contract
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%s/expenses", uuid.New()), uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
