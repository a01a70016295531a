// Package model defines the core data structures for the dosh application.
package model

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ISODate is the canonical date layout used for fingerprints and storage.
const ISODate = "2006-01-02"

var whitespaceRegex = regexp.MustCompile(`\s`)

// Transaction represents a single financial transaction from any source,
// normalized into the canonical shape shared by every import format.
type Transaction struct {
	Date              time.Time
	Fingerprint       string
	AccountName       string
	Description       string
	Category          string
	NeedsWantsSavings string
	Split             string
	Amount            decimal.Decimal
}

// StoredTransaction is a transaction as read back from the database,
// carrying the surrogate id assigned on insert. Date stays in its stored
// string form so rehashing reproduces the original fingerprint inputs.
type StoredTransaction struct {
	Date        string
	Description string
	Category    string
	AccountName string
	Amount      decimal.Decimal
	ID          int64
}

// NormalizeDescription strips all whitespace from a description. The
// fingerprint and the duplicate scan both compare descriptions in this form.
func NormalizeDescription(desc string) string {
	return whitespaceRegex.ReplaceAllString(desc, "")
}

// Fingerprint creates the content hash used for duplicate detection and
// idempotent re-import. The amount is always rendered with two decimal
// places so that 50 and 50.0 hash identically, on the import path and the
// rehash path alike.
func Fingerprint(date, description string, amount decimal.Decimal, account string) string {
	data := strings.Join([]string{
		date,
		NormalizeDescription(description),
		amount.StringFixed(2),
		account,
	}, ",")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// GenerateFingerprint computes the fingerprint from the transaction's own
// fields.
func (t *Transaction) GenerateFingerprint() string {
	return Fingerprint(t.Date.Format(ISODate), t.Description, t.Amount, t.AccountName)
}
