package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tripsplit/internal/apperr"
	"tripsplit/internal/middleware"
	"tripsplit/internal/service"
)

// maxReceiptBytes caps receipt uploads at 10 MiB.
const maxReceiptBytes = 10 << 20

// ExpenseHandler serves expense recording, queries and receipts.
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type participantRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Percent *int   `json:"percent"`
}

type createExpenseRequest struct {
	Name         string               `json:"name" validate:"required"`
	Amount       string               `json:"amount" validate:"required"`
	Payment      string               `json:"payment"`
	Memo         string               `json:"memo"`
	Location     string               `json:"location"`
	SpentAt      string               `json:"spentAt" validate:"required,datetime=2006-01-02"`
	Currency     string               `json:"currency"`
	SplitMode    string               `json:"splitMode"`
	Participants []participantRequest `json:"participants" validate:"dive"`
}

// Create handles POST /api/groups/:groupId/expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req createExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(c, apperr.Invalid("amount must be a decimal number"))
		return
	}
	spentAt, _ := time.Parse("2006-01-02", req.SpentAt)

	participants := make([]service.ParticipantInput, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = service.ParticipantInput{UserID: p.UserID, Percent: p.Percent}
	}

	detail, err := h.expenses.Create(c.Request.Context(), c.Param("groupId"), middleware.UserID(c), service.ExpenseInput{
		Name:         req.Name,
		Amount:       amount,
		Payment:      req.Payment,
		Memo:         req.Memo,
		Location:     req.Location,
		SpentAt:      spentAt,
		Currency:     req.Currency,
		SplitMode:    req.SplitMode,
		Participants: participants,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "expense recorded", detail)
}

// Get handles GET /api/expenses/:expenseId.
func (h *ExpenseHandler) Get(c *gin.Context) {
	detail, err := h.expenses.Get(c.Request.Context(), c.Param("expenseId"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "expense", detail)
}

// ListByGroup handles GET /api/groups/:groupId/expenses.
func (h *ExpenseHandler) ListByGroup(c *gin.Context) {
	list, err := h.expenses.ListByGroup(c.Request.Context(), c.Param("groupId"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "expenses", list)
}

// UploadReceipt handles POST /api/expenses/:expenseId/receipt with a
// multipart "image" file.
func (h *ExpenseHandler) UploadReceipt(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, apperr.Invalid("image file required"))
		return
	}
	if file.Size > maxReceiptBytes {
		respondError(c, apperr.Invalid("image too large"))
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, maxReceiptBytes))
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	receipt, err := h.expenses.AddReceipt(c.Request.Context(), c.Param("expenseId"), image)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "receipt uploaded", gin.H{"id": receipt.ID, "expenseId": receipt.ExpenseID})
}

// GetReceipt handles GET /api/expenses/:expenseId/receipt.
func (h *ExpenseHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.expenses.GetReceipt(c.Request.Context(), c.Param("expenseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "receipt", receipt)
}
