package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
	"unicode"

	"github.com/dosh-dev/dosh/internal/accounts"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
)

// SocietyParser parses building-society CSV exports. The file opens with a
// metadata preamble (account-name row, two balance rows, a header row, a
// blank row) before the data rows; the account name comes from the second
// field of the first row. Data rows carry separate debit and credit columns
// with a currency symbol, only one of which is populated.
type SocietyParser struct {
	resolver *accounts.Resolver
}

const societyDateFormat = "2 Jan 2006"

// Rows between the account-name row and the first data row. The blank
// separator line is swallowed by the CSV reader.
const societyPreambleRows = 3

// NewSocietyParser creates a parser for building-society exports.
func NewSocietyParser(resolver *accounts.Resolver) *SocietyParser {
	return &SocietyParser{resolver: resolver}
}

// Format returns the parser name.
func (p *SocietyParser) Format() string { return "society" }

// Parse reads a building-society export and returns canonical transactions.
func (p *SocietyParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rec, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading society account row: %w", err)
	}
	if len(rec) < 2 {
		return nil, fmt.Errorf("%w: society account row has %d fields, want at least 2", common.ErrMalformedRow, len(rec))
	}

	account, err := p.resolver.Resolve(rec[1])
	if err != nil {
		return nil, err
	}

	// Skip the balance and header rows.
	for i := 0; i < societyPreambleRows; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, fmt.Errorf("reading society preamble: %w", err)
		}
	}

	var txns []model.Transaction
	for line := societyPreambleRows + 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading society row %d: %w", line, err)
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("%w: society row %d has %d fields, want at least 4", common.ErrMalformedRow, line, len(rec))
		}

		date, err := time.Parse(societyDateFormat, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: society row %d date %q", common.ErrMalformedDate, line, rec[0])
		}

		debit, credit := rec[2], rec[3]
		var amount decimal.Decimal
		if debit == "" {
			amount, err = parseCurrencyAmount(credit)
		} else {
			if amount, err = parseCurrencyAmount(debit); err == nil {
				amount = amount.Neg()
			}
		}
		if err != nil {
			return nil, fmt.Errorf("society row %d: %w", line, err)
		}

		txn := model.Transaction{
			Date:              date,
			AccountName:       account,
			Description:       rec[1],
			Amount:            amount,
			Category:          "Unknown",
			NeedsWantsSavings: "Unknown",
		}
		txn.Fingerprint = txn.GenerateFingerprint()
		txns = append(txns, txn)
	}

	return txns, nil
}

// parseCurrencyAmount parses an amount like "£19.58", dropping the leading
// currency symbol.
func parseCurrencyAmount(raw string) (decimal.Decimal, error) {
	trimmed := []rune(raw)
	for len(trimmed) > 0 && !unicode.IsDigit(trimmed[0]) && trimmed[0] != '-' {
		trimmed = trimmed[1:]
	}

	amount, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	return amount, nil
}
