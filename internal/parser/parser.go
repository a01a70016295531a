// Package parser implements the per-bank export parsers. Each parser turns
// one raw tabular export format into canonical transactions, using the
// account resolver for name mapping and ignore filtering.
package parser

import (
	"errors"
	"io"

	"github.com/dosh-dev/dosh/internal/model"
)

// Parser converts one export format into canonical transactions.
type Parser interface {
	// Format returns the parser's format name, as used in CLI flags.
	Format() string
	// Parse reads a whole export and returns canonical transactions with
	// fingerprints set. It fails on the first malformed date or unknown
	// account rather than emitting a garbage row.
	Parse(r io.Reader) ([]model.Transaction, error)
}

// NativeParser handles dosh's own export format. The format has not been
// settled yet, so parsing always fails.
type NativeParser struct{}

// Format returns the parser name.
func (p *NativeParser) Format() string { return "native" }

// Parse is unimplemented.
func (p *NativeParser) Parse(_ io.Reader) ([]model.Transaction, error) {
	return nil, errors.New("native export parsing not implemented")
}
