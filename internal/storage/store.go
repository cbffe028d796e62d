// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"tripsplit/internal/models"
)

// ErrNotFound is returned (wrapped) by Get operations when the
// requested entity does not exist. Callers distinguish it with
// errors.Is.
var ErrNotFound = errors.New("not found")

// Store is the full persistence surface of the backend. The interface
// is split per aggregate so services can depend on just the slices they
// need, and so tests can substitute in-memory fakes.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	EventStore
	ReceiptStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. ID and CreatedAt are assigned by
	// the store if unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID. Returns nil, nil when the
	// user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email. Returns nil, nil when
	// no account uses the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// GroupStore persists groups and their membership rosters.
type GroupStore interface {
	// CreateGroup inserts a group and its initial member roster in one
	// transaction.
	CreateGroup(ctx context.Context, group *models.Group, memberIDs []string) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroupName renames an existing group.
	UpdateGroupName(ctx context.Context, groupID, name string) error

	// ReplaceGroupMembers swaps the full member roster of a group in
	// one transaction.
	ReplaceGroupMembers(ctx context.Context, groupID string, memberIDs []string) error

	// ListGroupsByUser returns every group the user is a member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// ListGroupMembers returns the users on a group's roster.
	ListGroupMembers(ctx context.Context, groupID string) ([]*models.User, error)

	// IsGroupMember reports whether the user is on the group's roster.
	// False always means deny, never "unknown".
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
}

// ExpenseStore persists expenses and their participant allocations.
type ExpenseStore interface {
	// CreateExpense inserts the expense row and all participant rows in
	// a single transaction: either everything commits or nothing does.
	// Participant row order is preserved on read-back.
	CreateExpense(ctx context.Context, expense *models.Expense, participants []*models.ExpenseParticipant) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, newest spent date
	// first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpenseParticipants returns the allocation rows of an
	// expense in their original input order.
	ListExpenseParticipants(ctx context.Context, expenseID string) ([]*models.ExpenseParticipant, error)

	// ListUserExpenseTotals aggregates expense amounts per spend date
	// across all groups the user belongs to, for from <= date < to,
	// ascending by date.
	ListUserExpenseTotals(ctx context.Context, userID string, from, to time.Time) ([]models.DateTotal, error)
}

// EventStore persists calendar events.
type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	ListEventsByGroup(ctx context.Context, groupID string) ([]*models.Event, error)
}

// ReceiptStore persists receipt images.
type ReceiptStore interface {
	// SaveReceipt inserts or replaces the receipt for an expense.
	SaveReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceiptByExpense retrieves the receipt attached to an expense.
	GetReceiptByExpense(ctx context.Context, expenseID string) (*models.Receipt, error)
}
