// Package service implements the application services: expense
// allocation and queries, groups, auth, calendar, FX rates and the my
// page view. Services are transport-free; the HTTP layer only parses
// requests and maps the apperr taxonomy onto status codes.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/apperr"
	"tripsplit/internal/calculator"
	"tripsplit/internal/models"
	"tripsplit/internal/storage"
)

// ExpenseService orchestrates expense creation (validation, split
// allocation, atomic persistence) and the expense query paths.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// ParticipantInput is one requested participant of a new expense.
// Percent is required for percent mode, ignored for equal mode.
type ParticipantInput struct {
	UserID  string
	Percent *int
}

// ExpenseInput is the payload for recording a new expense.
type ExpenseInput struct {
	Name         string
	Amount       decimal.Decimal
	Payment      string
	Memo         string
	Location     string
	SpentAt      time.Time
	Currency     string
	SplitMode    string
	Participants []ParticipantInput
}

// ParticipantDetail is one participant's slice of an expense as shown
// to clients. The share ratio is an internal computation detail and is
// deliberately absent.
type ParticipantDetail struct {
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	ShareAmount decimal.Decimal `json:"shareAmount"`
}

// ExpenseDetail is the full client-facing view of an expense.
type ExpenseDetail struct {
	ID           string              `json:"id"`
	GroupID      string              `json:"groupId"`
	Name         string              `json:"name"`
	Amount       decimal.Decimal     `json:"amount"`
	Payment      string              `json:"payment"`
	Memo         string              `json:"memo"`
	Location     string              `json:"location"`
	SpentAt      string              `json:"spentAt"`
	Currency     string              `json:"currency"`
	SplitMode    models.SplitMode    `json:"splitMode"`
	Participants []ParticipantDetail `json:"participants"`
}

// ReceiptDetail is the client-facing view of a receipt; the image is
// base64-encoded for JSON transport.
type ReceiptDetail struct {
	ID        string `json:"id"`
	ExpenseID string `json:"expenseId"`
	Image     string `json:"image"`
}

// Create records a new expense against a group and, when participants
// are supplied, computes and persists their allocations.
//
// All validation (group existence, requester and participant
// membership, percent sums) runs before any write; the expense row and
// every participant row then commit in one storage transaction, so
// either the full expense becomes visible or nothing does. The returned
// detail is assembled from the in-memory objects without a re-read.
func (s *ExpenseService) Create(ctx context.Context, groupID, userID string, in ExpenseInput) (*ExpenseDetail, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		slog.Error("Create expense: group lookup failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}

	member, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		slog.Error("Create expense: membership check failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}
	if !member {
		return nil, apperr.Forbidden("only group members may record expenses")
	}

	mode := models.NormalizeSplitMode(in.SplitMode)
	expense := &models.Expense{
		GroupID:   group.ID,
		Name:      in.Name,
		Amount:    in.Amount,
		Payment:   in.Payment,
		Memo:      in.Memo,
		Location:  in.Location,
		SpentAt:   in.SpentAt,
		Currency:  in.Currency,
		SplitMode: mode,
	}

	details := []ParticipantDetail{}
	var rows []*models.ExpenseParticipant
	if len(in.Participants) > 0 {
		shares := make([]calculator.ParticipantShare, len(in.Participants))
		users := make([]*models.User, len(in.Participants))
		for i, p := range in.Participants {
			ok, err := s.store.IsGroupMember(ctx, groupID, p.UserID)
			if err != nil {
				slog.Error("Create expense: participant membership check failed", "group_id", groupID, "user_id", p.UserID, "error", err)
				return nil, apperr.Internal(err)
			}
			if !ok {
				return nil, apperr.Forbidden("participants must be group members")
			}

			user, err := s.store.GetUserByID(ctx, p.UserID)
			if err != nil {
				slog.Error("Create expense: user lookup failed", "user_id", p.UserID, "error", err)
				return nil, apperr.Internal(err)
			}
			if user == nil {
				return nil, apperr.NotFound("user not found")
			}
			users[i] = user
			shares[i] = calculator.ParticipantShare{UserID: p.UserID, Percent: p.Percent}
		}

		allocations, err := calculator.ComputeAllocations(in.Amount, mode, shares)
		if err != nil {
			return nil, apperr.Invalid(err.Error())
		}

		rows = make([]*models.ExpenseParticipant, len(allocations))
		for i, a := range allocations {
			rows[i] = &models.ExpenseParticipant{
				UserID:      a.UserID,
				ShareRatio:  a.ShareRatio,
				ShareAmount: a.ShareAmount,
			}
			details = append(details, ParticipantDetail{
				UserID:      a.UserID,
				Name:        users[i].Name,
				Email:       users[i].Email,
				ShareAmount: a.ShareAmount,
			})
		}
	}

	if err := s.store.CreateExpense(ctx, expense, rows); err != nil {
		slog.Error("Create expense: persist failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}

	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", groupID,
		"split_mode", mode,
		"participants", len(rows),
	)

	return toExpenseDetail(expense, details), nil
}

// Get loads one expense with its participant allocations. Only members
// of the expense's group may view it. The call is read-only and safe to
// repeat.
func (s *ExpenseService) Get(ctx context.Context, expenseID, userID string) (*ExpenseDetail, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("expense not found")
		}
		slog.Error("Get expense failed", "expense_id", expenseID, "error", err)
		return nil, apperr.Internal(err)
	}

	member, err := s.store.IsGroupMember(ctx, expense.GroupID, userID)
	if err != nil {
		slog.Error("Get expense: membership check failed", "group_id", expense.GroupID, "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}
	if !member {
		return nil, apperr.Forbidden("only group members may view expenses")
	}

	details, err := s.participantDetails(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	return toExpenseDetail(expense, details), nil
}

// ListByGroup returns every expense of a group as full detail views,
// newest spent date first. Membership-gated like Get.
func (s *ExpenseService) ListByGroup(ctx context.Context, groupID, userID string) ([]*ExpenseDetail, error) {
	member, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		slog.Error("List expenses: membership check failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}
	if !member {
		return nil, apperr.Forbidden("only group members may view expenses")
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("List expenses failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err)
	}

	result := make([]*ExpenseDetail, 0, len(expenses))
	for _, expense := range expenses {
		details, err := s.participantDetails(ctx, expense.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, toExpenseDetail(expense, details))
	}

	return result, nil
}

// AddReceipt attaches an image to an expense, replacing any previous
// receipt.
func (s *ExpenseService) AddReceipt(ctx context.Context, expenseID string, image []byte) (*models.Receipt, error) {
	if len(image) == 0 {
		return nil, apperr.Invalid("no image attached")
	}

	if _, err := s.store.GetExpense(ctx, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("expense not found")
		}
		slog.Error("Add receipt: expense lookup failed", "expense_id", expenseID, "error", err)
		return nil, apperr.Internal(err)
	}

	receipt := &models.Receipt{ExpenseID: expenseID, Image: image}
	if err := s.store.SaveReceipt(ctx, receipt); err != nil {
		slog.Error("Add receipt: persist failed", "expense_id", expenseID, "error", err)
		return nil, apperr.Internal(err)
	}

	return receipt, nil
}

// GetReceipt returns the receipt attached to an expense with the image
// base64-encoded.
func (s *ExpenseService) GetReceipt(ctx context.Context, expenseID string) (*ReceiptDetail, error) {
	if _, err := s.store.GetExpense(ctx, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("expense not found")
		}
		slog.Error("Get receipt: expense lookup failed", "expense_id", expenseID, "error", err)
		return nil, apperr.Internal(err)
	}

	receipt, err := s.store.GetReceiptByExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("no receipt uploaded for this expense")
		}
		slog.Error("Get receipt failed", "expense_id", expenseID, "error", err)
		return nil, apperr.Internal(err)
	}

	return &ReceiptDetail{
		ID:        receipt.ID,
		ExpenseID: receipt.ExpenseID,
		Image:     base64.StdEncoding.EncodeToString(receipt.Image),
	}, nil
}

// participantDetails loads the allocation rows of an expense and joins
// each participant's user identity, eagerly and explicitly.
func (s *ExpenseService) participantDetails(ctx context.Context, expenseID string) ([]ParticipantDetail, error) {
	rows, err := s.store.ListExpenseParticipants(ctx, expenseID)
	if err != nil {
		slog.Error("Load expense participants failed", "expense_id", expenseID, "error", err)
		return nil, apperr.Internal(err)
	}

	details := make([]ParticipantDetail, 0, len(rows))
	for _, row := range rows {
		user, err := s.store.GetUserByID(ctx, row.UserID)
		if err != nil {
			slog.Error("Load participant user failed", "user_id", row.UserID, "error", err)
			return nil, apperr.Internal(err)
		}
		if user == nil {
			return nil, apperr.NotFound("user not found")
		}
		details = append(details, ParticipantDetail{
			UserID:      user.ID,
			Name:        user.Name,
			Email:       user.Email,
			ShareAmount: row.ShareAmount,
		})
	}

	return details, nil
}

func toExpenseDetail(expense *models.Expense, participants []ParticipantDetail) *ExpenseDetail {
	return &ExpenseDetail{
		ID:           expense.ID,
		GroupID:      expense.GroupID,
		Name:         expense.Name,
		Amount:       expense.Amount,
		Payment:      expense.Payment,
		Memo:         expense.Memo,
		Location:     expense.Location,
		SpentAt:      expense.SpentAt.Format("2006-01-02"),
		Currency:     expense.Currency,
		SplitMode:    expense.SplitMode,
		Participants: participants,
	}
}
