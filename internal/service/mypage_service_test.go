package service

import (
	"testing"
	"time"

	"tripsplit/internal/apperr"
)

func TestMyPageService_Get(t *testing.T) {
	env := newTestEnv(t)
	mypage := NewMyPageService(env.store, env.groups)
	mypage.now = func() time.Time { return date("2026-05-10") }

	// Two expenses inside the window, one on the same day, one ancient.
	spend := []struct {
		name   string
		amount string
		day    string
	}{
		{"lunch", "12.50", "2026-05-02"},
		{"coffee", "4.25", "2026-05-02"},
		{"dinner", "30.00", "2026-05-05"},
		{"last year", "99.99", "2025-05-02"},
	}
	for _, e := range spend {
		if _, err := env.expenses.Create(env.ctx, env.groupID, env.alice.ID, ExpenseInput{
			Name:    e.name,
			Amount:  money(e.amount),
			SpentAt: date(e.day),
		}); err != nil {
			t.Fatalf("create %s failed: %v", e.name, err)
		}
	}

	t.Run("profile, groups and recent spend", func(t *testing.T) {
		page, err := mypage.Get(env.ctx, env.alice.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if page.Name != "Alice" || page.Email != "alice@example.com" {
			t.Errorf("unexpected profile: %+v", page)
		}
		if len(page.Groups) != 1 {
			t.Errorf("expected 1 group, got %d", len(page.Groups))
		}
		if len(page.Spend) != 2 {
			t.Fatalf("expected 2 spend days, got %d", len(page.Spend))
		}
		if page.Spend[0].Date != "2026-05-02" || !page.Spend[0].Total.Equal(money("16.75")) {
			t.Errorf("expected 16.75 on 2026-05-02, got %s on %s",
				page.Spend[0].Total, page.Spend[0].Date)
		}
		if page.Spend[1].Date != "2026-05-05" || !page.Spend[1].Total.Equal(money("30.00")) {
			t.Errorf("expected 30.00 on 2026-05-05, got %s on %s",
				page.Spend[1].Total, page.Spend[1].Date)
		}
	})

	t.Run("totals cover the whole group regardless of who sees them", func(t *testing.T) {
		// Bob recorded nothing himself but shares the group, so the
		// group's spend shows up on his page too.
		page, err := mypage.Get(env.ctx, env.bob.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(page.Spend) != 2 {
			t.Errorf("expected 2 spend days for bob, got %d", len(page.Spend))
		}
	})

	t.Run("unknown user not found", func(t *testing.T) {
		_, err := mypage.Get(env.ctx, "nonexistent")
		wantKind(t, err, apperr.KindNotFound)
	})
}
