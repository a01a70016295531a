package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dosh-dev/dosh/internal/accounts"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
)

// LedgerParser parses plain bank-ledger CSV exports: headerless, three
// columns of ISO date, description, amount. Descriptions are not quoted by
// the bank, so an embedded comma splits the row into extra fields; those
// rows are repaired by joining the middle fields back together.
type LedgerParser struct {
	account string
}

// NewLedgerParser creates a parser for ledger exports. The export carries no
// account column, so the source account label is fixed at construction and
// resolved immediately.
func NewLedgerParser(resolver *accounts.Resolver, rawAccount string) (*LedgerParser, error) {
	account, err := resolver.Resolve(rawAccount)
	if err != nil {
		return nil, err
	}
	return &LedgerParser{account: account}, nil
}

// Format returns the parser name.
func (p *LedgerParser) Format() string { return "ledger" }

// Parse reads a ledger CSV and returns canonical transactions.
func (p *LedgerParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var txns []model.Transaction
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger row %d: %w", line, err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: ledger row %d has %d fields, want 3", common.ErrMalformedRow, line, len(rec))
		}

		date, err := time.Parse(model.ISODate, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: ledger row %d date %q", common.ErrMalformedDate, line, rec[0])
		}

		amount, err := decimal.NewFromString(rec[len(rec)-1])
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: parsing amount %q: %w", line, rec[len(rec)-1], err)
		}

		description := rec[1]
		if len(rec) > 3 {
			description = strings.Join(rec[1:len(rec)-1], ", ")
			slog.Warn("Incorrect field count, using joined description",
				"row", line,
				"description", description)
		}

		txn := model.Transaction{
			Date:              date,
			AccountName:       p.account,
			Description:       description,
			Amount:            amount,
			Category:          "Unknown",
			NeedsWantsSavings: "Unknown",
		}
		txn.Fingerprint = txn.GenerateFingerprint()
		txns = append(txns, txn)
	}

	return txns, nil
}
