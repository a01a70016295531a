// Package audit scans stored transactions for rows that look like the same
// real-world event despite carrying distinct fingerprints, e.g. rows
// imported before a fingerprint-formula change.
package audit

import (
	"github.com/dosh-dev/dosh/internal/model"
)

// Pair identifies two stored transactions flagged as duplicate candidates.
// LowID is always the smaller surrogate id; by convention it is the row the
// user deletes.
type Pair struct {
	LowID  int64
	HighID int64
}

// FindDuplicates returns every unordered pair of stored rows with the same
// date, the same amount, and descriptions that match after stripping all
// whitespace. Output is advisory; nothing is deleted. The onRow callback, if
// non-nil, is invoked once per row scanned so callers can report progress
// over the quadratic scan.
func FindDuplicates(rows []model.StoredTransaction, onRow func()) []Pair {
	var pairs []Pair
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if sameEvent(rows[i], rows[j]) {
				pairs = append(pairs, newPair(rows[i].ID, rows[j].ID))
			}
		}
		if onRow != nil {
			onRow()
		}
	}
	return pairs
}

// sameEvent reports whether two rows describe the same transaction: exact
// date and amount match, descriptions equal once whitespace is removed.
func sameEvent(a, b model.StoredTransaction) bool {
	if a.Date != b.Date {
		return false
	}
	if !a.Amount.Equal(b.Amount) {
		return false
	}
	return model.NormalizeDescription(a.Description) == model.NormalizeDescription(b.Description)
}

func newPair(a, b int64) Pair {
	if a < b {
		return Pair{LowID: a, HighID: b}
	}
	return Pair{LowID: b, HighID: a}
}
