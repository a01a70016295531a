package storage

import (
	"context"
	"fmt"

	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
)

// InsertTransactions bulk-inserts transactions, keyed on fingerprint
// uniqueness. Rows whose fingerprint already exists are silently skipped;
// re-importing the same file is a no-op by design. Returns the number of
// rows actually inserted.
func (s *Store) InsertTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			fingerprint, account_name, transaction_date, description,
			amount, category, needs_wants_savings, split
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		if txn.Fingerprint == "" {
			txn.Fingerprint = txn.GenerateFingerprint()
		}

		res, err := stmt.ExecContext(ctx,
			txn.Fingerprint,
			txn.AccountName,
			txn.Date.Format(model.ISODate),
			txn.Description,
			txn.Amount.String(),
			txn.Category,
			txn.NeedsWantsSavings,
			txn.Split,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.Fingerprint, err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// ListTransactions returns every stored transaction with its surrogate id,
// ordered by id.
func (s *Store) ListTransactions(ctx context.Context) ([]model.StoredTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_date, description, amount, category, account_name
		FROM transactions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.StoredTransaction
	for rows.Next() {
		var txn model.StoredTransaction
		var amount string
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Description, &amount, &txn.Category, &txn.AccountName); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
		}

		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// CountTransactions returns the number of stored transactions.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Rehash recomputes the fingerprint of every stored transaction from its
// stored field values and updates in place, keyed by surrogate id. Used when
// the fingerprint formula changes. Returns the number of rows updated.
func (s *Store) Rehash(ctx context.Context, compute func(model.StoredTransaction) string) (int, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "UPDATE transactions SET fingerprint = ? WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if _, err := stmt.ExecContext(ctx, compute(txn), txn.ID); err != nil {
			return 0, fmt.Errorf("failed to update fingerprint for id %d: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(transactions), nil
}
