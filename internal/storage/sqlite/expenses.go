package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripsplit/internal/models"
	"tripsplit/internal/storage"
)

// CreateExpense persists the expense row and all participant rows in a
// single transaction. Either everything commits or nothing does; a
// concurrent reader can never observe a half-written expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, participants []*models.ExpenseParticipant) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, group_id, name, amount, payment, memo, location, spent_at, currency, split_mode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.ID, expense.GroupID, expense.Name,
		expense.Amount.String(), expense.Payment, expense.Memo, expense.Location,
		formatDate(expense.SpentAt), expense.Currency, string(expense.SplitMode),
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	// seq preserves the caller's participant order on read-back.
	for i, p := range participants {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.ExpenseID = expense.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO expense_participants (id, expense_id, user_id, share_ratio, share_amount, seq)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			p.ID, p.ExpenseID, p.UserID,
			p.ShareRatio.String(), p.ShareAmount.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, name, amount, payment, memo, location, spent_at, currency, split_mode, created_at
		FROM expenses
		WHERE id = ?
	`, expenseID)

	expense, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpensesByGroup returns a group's expenses, newest spent date first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, name, amount, payment, memo, location, spent_at, currency, split_mode, created_at
		FROM expenses
		WHERE group_id = ?
		ORDER BY spent_at DESC, created_at DESC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// ListExpenseParticipants returns the allocation rows of an expense in
// their original input order.
func (s *SQLiteStore) ListExpenseParticipants(ctx context.Context, expenseID string) ([]*models.ExpenseParticipant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expense_id, user_id, share_ratio, share_amount
		FROM expense_participants
		WHERE expense_id = ?
		ORDER BY seq
	`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.ExpenseParticipant
	for rows.Next() {
		p := &models.ExpenseParticipant{}
		var ratio, amount string
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.UserID, &ratio, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense participant: %w", err)
		}
		if p.ShareRatio, err = decimal.NewFromString(ratio); err != nil {
			return nil, fmt.Errorf("failed to parse share ratio: %w", err)
		}
		if p.ShareAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse share amount: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense participants: %w", err)
	}

	return participants, nil
}

// ListUserExpenseTotals aggregates expense amounts per spend date across
// all groups the user belongs to, for from <= date < to, ascending.
// Amounts are summed in Go on exact decimals; SQLite SUM over the TEXT
// column would fall back to float arithmetic.
func (s *SQLiteStore) ListUserExpenseTotals(ctx context.Context, userID string, from, to time.Time) ([]models.DateTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.spent_at, e.amount
		FROM expenses e
		JOIN group_members gm ON gm.group_id = e.group_id
		WHERE gm.user_id = ?
		  AND e.spent_at >= ?
		  AND e.spent_at < ?
		ORDER BY e.spent_at
	`, userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query expense totals: %w", err)
	}
	defer rows.Close()

	var totals []models.DateTotal
	for rows.Next() {
		var spentAt, amountStr string
		if err := rows.Scan(&spentAt, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan expense total: %w", err)
		}
		date, err := parseDate(spentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse spend date: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse expense amount: %w", err)
		}

		if n := len(totals); n > 0 && totals[n-1].Date.Equal(date) {
			totals[n-1].Total = totals[n-1].Total.Add(amount)
			continue
		}
		totals = append(totals, models.DateTotal{Date: date, Total: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense totals: %w", err)
	}

	return totals, nil
}

// scanExpense scans one expense row via the given Scan function.
func scanExpense(scan func(dest ...any) error) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount, spentAt, splitMode string
	err := scan(
		&expense.ID, &expense.GroupID, &expense.Name,
		&amount, &expense.Payment, &expense.Memo, &expense.Location,
		&spentAt, &expense.Currency, &splitMode, &expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expense.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse expense amount: %w", err)
	}
	if expense.SpentAt, err = parseDate(spentAt); err != nil {
		return nil, fmt.Errorf("failed to parse spend date: %w", err)
	}
	expense.SplitMode = models.SplitMode(splitMode)

	return expense, nil
}
