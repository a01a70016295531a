package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/dosh-dev/dosh/internal/accounts"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
)

// CardParser parses credit-card exports: tab-delimited, three columns of
// "DD Mon YYYY" date, description, and an amount string carrying a currency
// symbol and a trailing DR/CR marker.
type CardParser struct {
	account string
}

const (
	cardDateFormat   = "2 Jan 2006"
	cardCreditMarker = "CR"
)

var cardAmountRegex = regexp.MustCompile(`\d+\.\d\d`)

// NewCardParser creates a parser for card exports. The export carries no
// account column, so the source account label is fixed at construction and
// resolved immediately.
func NewCardParser(resolver *accounts.Resolver, rawAccount string) (*CardParser, error) {
	account, err := resolver.Resolve(rawAccount)
	if err != nil {
		return nil, err
	}
	return &CardParser{account: account}, nil
}

// Format returns the parser name.
func (p *CardParser) Format() string { return "card" }

// Parse reads a card export and returns canonical transactions.
func (p *CardParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 3

	var txns []model.Transaction
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading card row %d: %w", line, err)
		}

		date, err := time.Parse(cardDateFormat, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: card row %d date %q", common.ErrMalformedDate, line, rec[0])
		}

		magnitude := cardAmountRegex.FindString(rec[2])
		if magnitude == "" {
			return nil, fmt.Errorf("%w: card row %d has no amount in %q", common.ErrMalformedRow, line, rec[2])
		}
		amount, err := decimal.NewFromString(magnitude)
		if err != nil {
			return nil, fmt.Errorf("card row %d: parsing amount %q: %w", line, magnitude, err)
		}

		// Debit unless the bank explicitly marks the row as a credit.
		if !strings.HasSuffix(rec[2], cardCreditMarker) {
			amount = amount.Neg()
		}

		txn := model.Transaction{
			Date:              date,
			AccountName:       p.account,
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
