package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/apperr"
	"tripsplit/internal/storage"
)

// mypageWindowDays is how far back the spending history reaches.
const mypageWindowDays = 30

// DailySpend is one day's total across all of a user's groups.
type DailySpend struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// MyPage is the personal dashboard: profile, group list and the recent
// per-day spending totals. Always scoped to the requesting user.
type MyPage struct {
	UserID string         `json:"userId"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Phone  string         `json:"phone"`
	Groups []GroupSummary `json:"groups"`
	Spend  []DailySpend   `json:"spend"`
}

// MyPageService assembles the per-user dashboard view.
type MyPageService struct {
	store  storage.Store
	groups *GroupService
	now    func() time.Time
}

// NewMyPageService creates a new MyPageService.
func NewMyPageService(store storage.Store, groups *GroupService) *MyPageService {
	return &MyPageService{store: store, groups: groups, now: time.Now}
}

// Get builds the dashboard for userID. There is no way to request
// another user's page; the ID always comes from the session token.
func (s *MyPageService) Get(ctx context.Context, userID string) (*MyPage, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("My page: user lookup failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	groups, err := s.groups.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	to := s.now().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -mypageWindowDays)
	totals, err := s.store.ListUserExpenseTotals(ctx, userID, from, to)
	if err != nil {
		slog.Error("My page: totals query failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}

	spend := make([]DailySpend, 0, len(totals))
	for _, t := range totals {
		spend = append(spend, DailySpend{Date: t.Date.Format("2006-01-02"), Total: t.Total})
	}

	return &MyPage{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		Groups: groups,
		Spend:  spend,
	}, nil
}
