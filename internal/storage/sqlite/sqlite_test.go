package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/models"
	"tripsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tripsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func seedUser(t *testing.T, store *SQLiteStore, name, email string) *models.User {
	t.Helper()
	user := models.NewUser(name, email, "", "x")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "Alice", "alice@example.com")
	bob := seedUser(t, store, "Bob", "bob@example.com")
	carol := seedUser(t, store, "Carol", "carol@example.com")

	group := &models.Group{Name: "Jeju 2025", Description: "spring trip"}
	if err := store.CreateGroup(ctx, group, []string{alice.ID, bob.ID}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("CreateUser generates ID and timestamps", func(t *testing.T) {
		if alice.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if alice.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail finds seeded user", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != alice.ID {
			t.Errorf("got %+v, want user %s", got, alice.ID)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil user, got %+v", got)
		}
	})

	t.Run("IsGroupMember distinguishes members from outsiders", func(t *testing.T) {
		for _, tc := range []struct {
			userID string
			want   bool
		}{
			{alice.ID, true},
			{bob.ID, true},
			{carol.ID, false},
		} {
			got, err := store.IsGroupMember(ctx, group.ID, tc.userID)
			if err != nil {
				t.Fatalf("IsGroupMember failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsGroupMember(%s) = %v, want %v", tc.userID, got, tc.want)
			}
		}
	})

	t.Run("GetGroup returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ReplaceGroupMembers swaps the roster", func(t *testing.T) {
		g := &models.Group{Name: "Busan"}
		if err := store.CreateGroup(ctx, g, []string{alice.ID}); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := store.ReplaceGroupMembers(ctx, g.ID, []string{bob.ID, carol.ID}); err != nil {
			t.Fatalf("ReplaceGroupMembers failed: %v", err)
		}
		members, err := store.ListGroupMembers(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListGroupMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("expected 2 members, got %d", len(members))
		}
		ok, err := store.IsGroupMember(ctx, g.ID, alice.ID)
		if err != nil {
			t.Fatalf("IsGroupMember failed: %v", err)
		}
		if ok {
			t.Error("alice should have been removed from the roster")
		}
	})

	t.Run("CreateExpense persists expense with participants atomically", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:   group.ID,
			Name:      "Dinner",
			Amount:    mustDecimal(t, "300.00"),
			Payment:   "card",
			SpentAt:   time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
			Currency:  "KRW",
			SplitMode: models.SplitModeEqual,
		}
		participants := []*models.ExpenseParticipant{
			{UserID: bob.ID, ShareRatio: mustDecimal(t, "0.5"), ShareAmount: mustDecimal(t, "150.00")},
			{UserID: alice.ID, ShareRatio: mustDecimal(t, "0.5"), ShareAmount: mustDecimal(t, "150.00")},
		}

		if err := store.CreateExpense(ctx, expense, participants); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(expense.Amount) {
			t.Errorf("Amount = %s, want %s", got.Amount, expense.Amount)
		}
		if got.SplitMode != models.SplitModeEqual {
			t.Errorf("SplitMode = %s, want %s", got.SplitMode, models.SplitModeEqual)
		}
		if !got.SpentAt.Equal(expense.SpentAt) {
			t.Errorf("SpentAt = %v, want %v", got.SpentAt, expense.SpentAt)
		}

		rows, err := store.ListExpenseParticipants(ctx, expense.ID)
		if err != nil {
			t.Fatalf("ListExpenseParticipants failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 participant rows, got %d", len(rows))
		}
		// Input order survives the round trip: bob was listed first.
		if rows[0].UserID != bob.ID || rows[1].UserID != alice.ID {
			t.Errorf("participant order = [%s, %s], want [%s, %s]",
				rows[0].UserID, rows[1].UserID, bob.ID, alice.ID)
		}
	})

	t.Run("CreateExpense rolls back all rows on participant failure", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:   group.ID,
			Name:      "Broken",
			Amount:    mustDecimal(t, "10.00"),
			SpentAt:   time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC),
			Currency:  "KRW",
			SplitMode: models.SplitModeEqual,
		}
		// Duplicate (expense, user) pair violates the unique constraint
		// on the second insert.
		participants := []*models.ExpenseParticipant{
			{UserID: alice.ID, ShareRatio: mustDecimal(t, "0.5"), ShareAmount: mustDecimal(t, "5.00")},
			{UserID: alice.ID, ShareRatio: mustDecimal(t, "0.5"), ShareAmount: mustDecimal(t, "5.00")},
		}

		if err := store.CreateExpense(ctx, expense, participants); err == nil {
			t.Fatal("expected constraint violation, got nil")
		}

		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expense row should have rolled back, got %v", err)
		}
	})

	t.Run("ListExpensesByGroup orders by spend date descending", func(t *testing.T) {
		g := &models.Group{Name: "Order check"}
		if err := store.CreateGroup(ctx, g, []string{alice.ID}); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		for _, day := range []int{3, 9, 5} {
			e := &models.Expense{
				GroupID:   g.ID,
				Name:      "e",
				Amount:    mustDecimal(t, "1.00"),
				SpentAt:   time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC),
				Currency:  "KRW",
				SplitMode: models.SplitModeEqual,
			}
			if err := store.CreateExpense(ctx, e, nil); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}
		expenses, err := store.ListExpensesByGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(expenses))
		}
		days := []int{expenses[0].SpentAt.Day(), expenses[1].SpentAt.Day(), expenses[2].SpentAt.Day()}
		if days[0] != 9 || days[1] != 5 || days[2] != 3 {
			t.Errorf("spend days = %v, want [9 5 3]", days)
		}
	})

	t.Run("ListUserExpenseTotals sums per date across groups", func(t *testing.T) {
		user := seedUser(t, store, "Dan", "dan@example.com")
		g1 := &models.Group{Name: "g1"}
		g2 := &models.Group{Name: "g2"}
		for _, g := range []*models.Group{g1, g2} {
			if err := store.CreateGroup(ctx, g, []string{user.ID}); err != nil {
				t.Fatalf("CreateGroup failed: %v", err)
			}
		}
		day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
		for _, e := range []*models.Expense{
			{GroupID: g1.ID, Name: "a", Amount: mustDecimal(t, "10.50"), SpentAt: day, Currency: "KRW", SplitMode: models.SplitModeEqual},
			{GroupID: g2.ID, Name: "b", Amount: mustDecimal(t, "4.25"), SpentAt: day, Currency: "KRW", SplitMode: models.SplitModeEqual},
			{GroupID: g1.ID, Name: "c", Amount: mustDecimal(t, "1.00"), SpentAt: day.AddDate(0, 0, 1), Currency: "KRW", SplitMode: models.SplitModeEqual},
		} {
			if err := store.CreateExpense(ctx, e, nil); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		totals, err := store.ListUserExpenseTotals(ctx, user.ID, day, day.AddDate(0, 0, 7))
		if err != nil {
			t.Fatalf("ListUserExpenseTotals failed: %v", err)
		}
		if len(totals) != 2 {
			t.Fatalf("expected 2 dates, got %d", len(totals))
		}
		if !totals[0].Total.Equal(mustDecimal(t, "14.75")) {
			t.Errorf("day 1 total = %s, want 14.75", totals[0].Total)
		}
		if !totals[1].Total.Equal(mustDecimal(t, "1.00")) {
			t.Errorf("day 2 total = %s, want 1.00", totals[1].Total)
		}
	})

	t.Run("SaveReceipt replaces existing image", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:   group.ID,
			Name:      "With receipt",
			Amount:    mustDecimal(t, "20.00"),
			SpentAt:   time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
			Currency:  "KRW",
			SplitMode: models.SplitModeEqual,
		}
		if err := store.CreateExpense(ctx, expense, nil); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		first := &models.Receipt{ExpenseID: expense.ID, Image: []byte("v1")}
		if err := store.SaveReceipt(ctx, first); err != nil {
			t.Fatalf("SaveReceipt failed: %v", err)
		}
		second := &models.Receipt{ExpenseID: expense.ID, Image: []byte("v2")}
		if err := store.SaveReceipt(ctx, second); err != nil {
			t.Fatalf("SaveReceipt (replace) failed: %v", err)
		}

		got, err := store.GetReceiptByExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetReceiptByExpense failed: %v", err)
		}
		if string(got.Image) != "v2" {
			t.Errorf("receipt image = %q, want %q", got.Image, "v2")
		}
	})

	t.Run("GetReceiptByExpense returns ErrNotFound without upload", func(t *testing.T) {
		_, err := store.GetReceiptByExpense(ctx, "no-such-expense")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Events round-trip ordered by date", func(t *testing.T) {
		for _, e := range []*models.Event{
			{GroupID: group.ID, Name: "Flight", Date: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), Location: "GMP"},
			{GroupID: group.ID, Name: "Check-in", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		} {
			if err := store.CreateEvent(ctx, e); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}
		}
		events, err := store.ListEventsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListEventsByGroup failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Name != "Check-in" || events[1].Name != "Flight" {
			t.Errorf("event order = [%s, %s], want [Check-in, Flight]", events[0].Name, events[1].Name)
		}
	})
}
