package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fraktion/expense-management/internal/application/port"
	"github.com/fraktion/expense-management/internal/application/service"
	"github.com/fraktion/expense-management/internal/domain/expense"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenseService service.ExpenseService
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(expenseService service.ExpenseService, logger Logger) *Handlers {
	return &Handlers{
		expenseService: expenseService,
		logger:         logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createExpenseRequest is the payload for POST /api/expenses. The acting user
// from the X-User-ID header becomes the submitter.
type createExpenseRequest struct {
	Title             string    `json:"title" binding:"required"`
	Date              time.Time `json:"date" binding:"required"`
	Amount            float64   `json:"amount"`
	Category          string    `json:"category" binding:"required"`
	OrganizationID    string    `json:"organization_id" binding:"required"`
	Notes             string    `json:"notes"`
	DocumentReference string    `json:"document_reference"`
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization_id"})
		return
	}

	e, err := h.expenseService.CreateExpense(c.Request.Context(), service.CreateExpenseParams{
		SubmitterID:       userID,
		Title:             req.Title,
		Date:              req.Date,
		Amount:            req.Amount,
		Category:          req.Category,
		OrganizationID:    orgID,
		Notes:             req.Notes,
		DocumentReference: req.DocumentReference,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	expenseID, ok := h.pathID(c)
	if !ok {
		return
	}

	e, err := h.expenseService.GetExpense(c.Request.Context(), expenseID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// SubmitExpense handles POST /api/expenses/:id/submit
func (h *Handlers) SubmitExpense(c *gin.Context) {
	h.transition(c, h.expenseService.SubmitExpense)
}

// ApproveExpense handles POST /api/expenses/:id/approve
func (h *Handlers) ApproveExpense(c *gin.Context) {
	h.transition(c, h.expenseService.ApproveExpense)
}

// WithdrawExpense handles POST /api/expenses/:id/withdraw
func (h *Handlers) WithdrawExpense(c *gin.Context) {
	h.transition(c, h.expenseService.WithdrawExpense)
}

// RevokeApproval handles POST /api/expenses/:id/revoke
func (h *Handlers) RevokeApproval(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.expenseService.RevokeApproval(c.Request.Context(), userID, expenseID, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// ListExpensesByUser handles GET /api/users/:id/expenses
func (h *Handlers) ListExpensesByUser(c *gin.Context) {
	userID, ok := h.pathID(c)
	if !ok {
		return
	}

	expenses, err := h.expenseService.FindExpensesByUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses, "count": len(expenses)})
}

// ListExpensesForOrganization handles GET /api/organizations/:id/expenses
func (h *Handlers) ListExpensesForOrganization(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	orgID, ok := h.pathID(c)
	if !ok {
		return
	}

	expenses, err := h.expenseService.GetExpensesForOrganization(c.Request.Context(), userID, orgID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses, "count": len(expenses)})
}

type transitionFunc func(ctx context.Context, userID, expenseID uuid.UUID) (*expense.Expense, error)

func (h *Handlers) transition(c *gin.Context, fn transitionFunc) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c)
	if !ok {
		return
	}

	e, err := fn(c.Request.Context(), userID, expenseID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// actingUser resolves the acting user from the X-User-ID header. Session
// handling lives outside this service; the header stands in for it.
func (h *Handlers) actingUser(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-ID header"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid X-User-ID header"})
		return uuid.Nil, false
	}

	return userID, true
}

func (h *Handlers) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps the error taxonomy onto HTTP response classes: lookup
// failures to 404, authorization failures to 403, violated domain
// preconditions to 409, bad input to 400.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, port.ErrNoExpenseFound),
		errors.Is(err, port.ErrUserNotFound),
		errors.Is(err, port.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidSubmitter),
		errors.Is(err, service.ErrInvalidApprover),
		errors.Is(err, service.ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, expense.ErrUnknownCategory),
		errors.Is(err, expense.ErrNegativeAmount),
		errors.Is(err, expense.ErrMissingReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, expense.ErrExpenseNotDraft),
		errors.Is(err, expense.ErrExpenseNotSubmitted),
		errors.Is(err, expense.ErrInvalidApprover),
		errors.Is(err, expense.ErrInvalidWithdrawUser),
		errors.Is(err, expense.ErrInvalidWithdrawState),
		errors.Is(err, expense.ErrInvalidRevokeState),
		errors.Is(err, expense.ErrInvalidRevokeUser):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		h.logger.Error("Unhandled request error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
