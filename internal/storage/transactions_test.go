package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testTransaction(day int, description string, amount decimal.Decimal) model.Transaction {
	txn := model.Transaction{
		Date:              time.Date(2011, 6, day, 0, 0, 0, 0, time.UTC),
		AccountName:       "My Bank Account",
		Description:       description,
		Amount:            amount,
		Category:          "Unknown",
		NeedsWantsSavings: "Unknown",
	}
	txn.Fingerprint = txn.GenerateFingerprint()
	return txn
}

func TestStore_InsertTransactions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTransaction(16, "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		testTransaction(17, "Tesco Store 1.", decimal.NewFromFloat(-19.58)),
	}

	inserted, err := store.InsertTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_InsertTransactions_IdempotentReimport(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTransaction(16, "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		testTransaction(17, "Tesco Store 1.", decimal.NewFromFloat(-19.58)),
	}

	_, err := store.InsertTransactions(ctx, txns)
	require.NoError(t, err)

	// Importing the same file twice must not add rows or error.
	inserted, err := store.InsertTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_InsertTransactions_FillsMissingFingerprint(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	txn := testTransaction(16, "Transfer from xxxx1234.", decimal.NewFromInt(50))
	want := txn.Fingerprint
	txn.Fingerprint = ""

	_, err := store.InsertTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	rows, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Re-inserting with the precomputed fingerprint collides.
	txn.Fingerprint = want
	inserted, err := store.InsertTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestStore_ListTransactions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	txn := testTransaction(16, "Transfer from xxxx1234.", decimal.NewFromInt(50))
	txn.Category = "Transfers"
	_, err := store.InsertTransactions(ctx, []model.Transaction{txn})
	require.NoError(t, err)

	rows, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(1), row.ID)
	assert.Equal(t, "2011-06-16", row.Date)
	assert.Equal(t, "Transfer from xxxx1234.", row.Description)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Transfers", row.Category)
	assert.Equal(t, "My Bank Account", row.AccountName)
}

func TestStore_ListTransactions_Empty(t *testing.T) {
	store := setupTestStore(t)

	rows, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_Rehash(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTransaction(16, "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		testTransaction(17, "Tesco Store 1.", decimal.NewFromFloat(-19.58)),
	}
	_, err := store.InsertTransactions(ctx, txns)
	require.NoError(t, err)

	updated, err := store.Rehash(ctx, func(txn model.StoredTransaction) string {
		return model.Fingerprint(txn.Date, txn.Description, txn.Amount, txn.AccountName)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	// The current formula rehashed over stored values must reproduce the
	// import-time fingerprints, so a re-import is still a no-op.
	inserted, err := store.InsertTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestStore_Rehash_PreservesIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.InsertTransactions(ctx, []model.Transaction{
		testTransaction(16, "Transfer from xxxx1234.", decimal.NewFromInt(50)),
	})
	require.NoError(t, err)

	before, err := store.ListTransactions(ctx)
	require.NoError(t, err)

	_, err = store.Rehash(ctx, func(model.StoredTransaction) string {
		return "rewritten"
	})
	require.NoError(t, err)

	after, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dosh.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
