// Package calculator implements the pure split allocation math.
// It has no storage or transport dependencies; validation failures are
// reported as ordinary errors wrapping ErrInvalidSplit.
package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tripsplit/internal/models"
)

// ErrInvalidSplit is the base error for every split validation failure.
// A single bad participant invalidates the whole batch; no partial
// allocation is ever returned.
var ErrInvalidSplit = errors.New("invalid split")

// ParticipantShare is one participant's requested share of an expense.
// Percent is required for percent mode and ignored for equal mode.
type ParticipantShare struct {
	UserID  string
	Percent *int
}

// Allocation is the computed share for one participant.
type Allocation struct {
	UserID string

	// ShareRatio is the participant's fraction of the total, rounded
	// half-up to 4 decimal digits.
	ShareRatio decimal.Decimal

	// ShareAmount is the participant's currency amount, rounded half-up
	// to 2 decimal digits, computed independently per participant.
	ShareAmount decimal.Decimal
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ComputeAllocations computes per-participant share ratios and amounts.
//
// Equal mode: ratio = 1/N and amount = total/N, each rounded half-up at
// 4 and 2 digits respectively. Percent mode: ratio = percent/100 at 4
// digits, amount = total x ratio at 2 digits. Percent inputs are
// validated in full (non-nil, 0..100, summing to exactly 100) before any
// per-participant arithmetic runs.
//
// Output order matches input order. Because each amount is rounded on
// its own, the amounts may sum to up to N-1 minor units away from the
// total; the remainder is deliberately not redistributed.
func ComputeAllocations(total decimal.Decimal, mode models.SplitMode, participants []ParticipantShare) ([]Allocation, error) {
	if len(participants) == 0 {
		return nil, nil
	}

	if mode == models.SplitModePercent {
		sum := 0
		for _, p := range participants {
			if p.Percent == nil {
				return nil, fmt.Errorf("%w: participant %s has no percent", ErrInvalidSplit, p.UserID)
			}
			if *p.Percent < 0 || *p.Percent > 100 {
				return nil, fmt.Errorf("%w: participant %s percent %d out of range [0,100]", ErrInvalidSplit, p.UserID, *p.Percent)
			}
			sum += *p.Percent
		}
		if sum != 100 {
			return nil, fmt.Errorf("%w: percentages must sum to 100, got %d", ErrInvalidSplit, sum)
		}
	}

	n := decimal.NewFromInt(int64(len(participants)))
	allocations := make([]Allocation, len(participants))
	for i, p := range participants {
		var ratio, amount decimal.Decimal
		if mode == models.SplitModePercent {
			ratio = decimal.NewFromInt(int64(*p.Percent)).DivRound(hundred, 4)
			amount = total.Mul(ratio).Round(2)
		} else {
			ratio = one.DivRound(n, 4)
			amount = total.DivRound(n, 2)
		}
		allocations[i] = Allocation{
			UserID:      p.UserID,
			ShareRatio:  ratio,
			ShareAmount: amount,
		}
	}
	return allocations, nil
}
