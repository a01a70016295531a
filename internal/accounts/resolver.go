// Package accounts maps raw source-specific account labels to canonical
// account names and filters out rows that should never be imported.
package accounts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dosh-dev/dosh/internal/common"
)

// Resolver translates raw account labels from bank exports into the
// canonical names used for fingerprinting and rule matching. It is built
// once from configuration and never mutated.
type Resolver struct {
	names  map[string]string
	ignore []*regexp.Regexp
}

// NewResolver creates a resolver from a raw-to-canonical name mapping and a
// list of ignore patterns. Patterns are anchored at the start of the value.
// Name lookups are case-insensitive; the configuration layer does not
// preserve key case.
func NewResolver(names map[string]string, ignorePatterns []string) (*Resolver, error) {
	lowered := make(map[string]string, len(names))
	for raw, canonical := range names {
		lowered[strings.ToLower(raw)] = canonical
	}

	ignore := make([]*regexp.Regexp, 0, len(ignorePatterns))
	for _, pattern := range ignorePatterns {
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		ignore = append(ignore, re)
	}

	return &Resolver{
		names:  lowered,
		ignore: ignore,
	}, nil
}

// Resolve returns the canonical name for a raw account label. Unknown labels
// are an error: inventing account names would corrupt fingerprints and rule
// account filters downstream.
func (r *Resolver) Resolve(raw string) (string, error) {
	name, ok := r.names[strings.ToLower(raw)]
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownAccount, raw)
	}
	return name, nil
}

// ShouldIgnore reports whether a raw description or account label matches
// any configured ignore pattern. Matching rows are skipped before any other
// processing.
func (r *Resolver) ShouldIgnore(raw string) bool {
	for _, re := range r.ignore {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}
