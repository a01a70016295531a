package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dosh-dev/dosh/internal/accounts"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
)

// AggregatorParser parses account-aggregator CSV exports: comma-delimited
// with a named header row, one account column per row, dates as DD/MM/YYYY.
type AggregatorParser struct {
	resolver *accounts.Resolver
}

const aggregatorDateFormat = "02/01/2006"

// Columns the aggregator export must carry. Extra columns (Status, Currency,
// Memo, ...) are ignored.
var aggregatorColumns = []string{
	"Date",
	"Original Description",
	"Split Type",
	"Category",
	"Amount",
	"Account Name",
}

// NewAggregatorParser creates a parser for aggregator exports.
func NewAggregatorParser(resolver *accounts.Resolver) *AggregatorParser {
	return &AggregatorParser{resolver: resolver}
}

// Format returns the parser name.
func (p *AggregatorParser) Format() string { return "aggregator" }

// Parse reads an aggregator CSV and returns canonical transactions.
func (p *AggregatorParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading aggregator header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range aggregatorColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: aggregator export missing column %q", common.ErrMalformedRow, name)
		}
	}

	var txns []model.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading aggregator row %d: %w", line, err)
		}

		description := rec[col["Original Description"]]
		rawAccount := rec[col["Account Name"]]
		if p.resolver.ShouldIgnore(description) || p.resolver.ShouldIgnore(rawAccount) {
			continue
		}

		account, err := p.resolver.Resolve(rawAccount)
		if err != nil {
			return nil, fmt.Errorf("aggregator row %d: %w", line, err)
		}

		date, err := time.Parse(aggregatorDateFormat, rec[col["Date"]])
		if err != nil {
			return nil, fmt.Errorf("%w: aggregator row %d date %q", common.ErrMalformedDate, line, rec[col["Date"]])
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(rec[col["Amount"]], ",", ""))
		if err != nil {
			return nil, fmt.Errorf("aggregator row %d: parsing amount %q: %w", line, rec[col["Amount"]], err)
		}

		txn := model.Transaction{
			Date:              date,
			AccountName:       account,
			Description:       description,
			Amount:            amount,
			Category:          rec[col["Category"]],
			NeedsWantsSavings: "Unknown",
			Split:             rec[col["Split Type"]],
		}
		txn.Fingerprint = txn.GenerateFingerprint()
		txns = append(txns, txn)
	}

	return txns, nil
}
