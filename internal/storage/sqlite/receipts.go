package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripsplit/internal/models"
	"tripsplit/internal/storage"
)

// SaveReceipt inserts or replaces the receipt attached to an expense.
func (s *SQLiteStore) SaveReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (id, expense_id, image, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (expense_id) DO UPDATE SET image = excluded.image, created_at = excluded.created_at
	`,
		receipt.ID, receipt.ExpenseID, receipt.Image, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}

	return nil
}

// GetReceiptByExpense retrieves the receipt attached to an expense.
func (s *SQLiteStore) GetReceiptByExpense(ctx context.Context, expenseID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, expense_id, image, created_at FROM receipts WHERE expense_id = ?",
		expenseID,
	).Scan(&receipt.ID, &receipt.ExpenseID, &receipt.Image, &receipt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt for expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return receipt, nil
}
