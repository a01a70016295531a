package audit

import (
	"testing"

	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id int64, date, description string, amount decimal.Decimal) model.StoredTransaction {
	return model.StoredTransaction{
		ID:          id,
		Date:        date,
		Description: description,
		Amount:      amount,
		AccountName: "My Bank Account",
	}
}

func TestFindDuplicates_WhitespaceOnlyDifference(t *testing.T) {
	rows := []model.StoredTransaction{
		row(1, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		row(2, "2011-06-16", "Transfer  from xxxx1234.", decimal.NewFromInt(50)),
		row(3, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(51)),
	}

	pairs := FindDuplicates(rows, nil)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{LowID: 1, HighID: 2}, pairs[0])
}

func TestFindDuplicates_NoFalsePositives(t *testing.T) {
	tests := []struct {
		name string
		a    model.StoredTransaction
		b    model.StoredTransaction
	}{
		{
			name: "different dates",
			a:    row(1, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
			b:    row(2, "2011-06-17", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		},
		{
			name: "different amounts",
			a:    row(1, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
			b:    row(2, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(49)),
		},
		{
			name: "different descriptions",
			a:    row(1, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
			b:    row(2, "2011-06-16", "Transfer from xxxx5678.", decimal.NewFromInt(50)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := FindDuplicates([]model.StoredTransaction{tt.a, tt.b}, nil)
			assert.Empty(t, pairs)
		})
	}
}

func TestFindDuplicates_AmountFormInsensitive(t *testing.T) {
	fifty, err := decimal.NewFromString("50.00")
	require.NoError(t, err)

	rows := []model.StoredTransaction{
		row(1, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		row(2, "2011-06-16", "Transfer from xxxx1234.", fifty),
	}

	pairs := FindDuplicates(rows, nil)
	assert.Len(t, pairs, 1)
}

func TestFindDuplicates_PairsReportedOnce(t *testing.T) {
	rows := []model.StoredTransaction{
		row(1, "2011-06-16", "Transfer from xxxx1234.", decimal.NewFromInt(50)),
		row(2, "2011-06-16", "Transfer  from xxxx1234.", decimal.NewFromInt(50)),
		row(3, "2011-06-16", "Transferfromxxxx1234.", decimal.NewFromInt(50)),
	}

	pairs := FindDuplicates(rows, nil)
	require.Len(t, pairs, 3)
	assert.Equal(t, Pair{LowID: 1, HighID: 2}, pairs[0])
	assert.Equal(t, Pair{LowID: 1, HighID: 3}, pairs[1])
	assert.Equal(t, Pair{LowID: 2, HighID: 3}, pairs[2])
	for _, p := range pairs {
		assert.Less(t, p.LowID, p.HighID)
	}
}

func TestFindDuplicates_ProgressCallback(t *testing.T) {
	rows := []model.StoredTransaction{
		row(1, "2011-06-16", "a", decimal.NewFromInt(1)),
		row(2, "2011-06-17", "b", decimal.NewFromInt(2)),
		row(3, "2011-06-18", "c", decimal.NewFromInt(3)),
	}

	calls := 0
	FindDuplicates(rows, func() { calls++ })
	assert.Equal(t, len(rows), calls)
}
