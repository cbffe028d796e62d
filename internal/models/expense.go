package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SplitMode selects how an expense total is divided among participants.
type SplitMode string

const (
	// SplitModeEqual divides the total evenly among all participants.
	SplitModeEqual SplitMode = "equal"

	// SplitModePercent divides the total by caller-supplied integer
	// percentages that must sum to exactly 100.
	SplitModePercent SplitMode = "by_percent"
)

// NormalizeSplitMode maps a raw request string to a SplitMode. Only a
// case-insensitive "by_percent" selects percent splitting; every other
// value, including empty, falls back to equal split. The fallback is a
// deliberate default, not an error.
func NormalizeSplitMode(raw string) SplitMode {
	if strings.EqualFold(raw, string(SplitModePercent)) {
		return SplitModePercent
	}
	return SplitModeEqual
}

// Expense represents a spend recorded against a group.
// Amount and SplitMode are immutable once created; the expense is
// removed only by cascading deletion of its group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to. Required.
	GroupID string

	// Name is the human-readable label for the expense.
	Name string

	// Amount is the total spent, exact decimal at currency-minor-unit
	// precision (2 fractional digits).
	Amount decimal.Decimal

	// Payment is a free-text payment method label (e.g., "card").
	Payment string

	// Memo is a free-text note.
	Memo string

	// Location is where the money was spent.
	Location string

	// SpentAt is the date the money was spent. Date precision only.
	SpentAt time.Time

	// Currency is the ISO currency code (e.g., "KRW", "USD").
	Currency string

	// SplitMode is the normalized split policy for this expense.
	SplitMode SplitMode

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseParticipant is one member's allocated share of an expense.
// Rows are created atomically with the parent expense and never updated
// independently.
type ExpenseParticipant struct {
	// ID is the unique identifier for the row (UUID format).
	ID string

	// ExpenseID is the parent expense.
	ExpenseID string

	// UserID references a user who must be a member of the expense's
	// group.
	UserID string

	// ShareRatio is this participant's fraction of the total, in [0,1],
	// kept at 4 decimal digits.
	ShareRatio decimal.Decimal

	// ShareAmount is this participant's slice of the total in the
	// expense currency, kept at 2 decimal digits. Rounded independently
	// per participant, so the sum over all participants may drift from
	// the expense amount by up to N-1 minor units.
	ShareAmount decimal.Decimal
}

// DateTotal is an aggregate of expense amounts for one calendar date.
type DateTotal struct {
	Date  time.Time
	Total decimal.Decimal
}
