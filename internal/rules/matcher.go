// Package rules implements first-match classification of transactions
// against an ordered list of user-defined rules.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
)

// Comparator is the operator of an amount constraint.
type Comparator string

// Amount comparator constants.
const (
	AmountLess    Comparator = "<"
	AmountEqual   Comparator = "="
	AmountGreater Comparator = ">"
)

// AmountConstraint restricts a rule to transactions whose amount satisfies
// the comparator against the threshold.
type AmountConstraint struct {
	Op        Comparator
	Threshold decimal.Decimal
}

// Rule matches transactions by description pattern, with optional account
// and amount filters, and assigns a category to whatever it matches.
type Rule struct {
	Pattern  *regexp.Regexp
	Account  string
	Amount   *AmountConstraint
	Category string
}

// NewRule compiles a rule from its configuration form. The description
// pattern is anchored at the start; the amount constraint is a comparator
// followed by a threshold, e.g. "<50" or ">1000.00".
func NewRule(pattern, account, amount, category string) (Rule, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return Rule{}, fmt.Errorf("invalid rule pattern %q: %w", pattern, err)
	}

	rule := Rule{
		Pattern:  re,
		Account:  account,
		Category: category,
	}

	if amount != "" {
		constraint, err := parseAmountConstraint(amount)
		if err != nil {
			return Rule{}, err
		}
		rule.Amount = constraint
	}

	return rule, nil
}

func parseAmountConstraint(raw string) (*AmountConstraint, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("invalid amount constraint %q", raw)
	}

	op := Comparator(raw[:1])
	switch op {
	case AmountLess, AmountEqual, AmountGreater:
	default:
		return nil, fmt.Errorf("invalid amount comparator %q", raw)
	}

	threshold, err := decimal.NewFromString(strings.TrimSpace(raw[1:]))
	if err != nil {
		return nil, fmt.Errorf("invalid amount threshold %q: %w", raw, err)
	}

	return &AmountConstraint{Op: op, Threshold: threshold}, nil
}

// Matcher evaluates rules in their configured order. First match wins.
type Matcher struct {
	rules []Rule
}

// NewMatcher creates a matcher over an ordered rule list.
func NewMatcher(rules []Rule) *Matcher {
	return &Matcher{rules: rules}
}

// Classify returns the category of the first rule the transaction matches.
// The second return is false when no rule matched, in which case the caller
// keeps the transaction's prior category.
func (m *Matcher) Classify(txn model.Transaction) (string, bool) {
	for _, rule := range m.rules {
		if matchesRule(txn, rule) {
			return rule.Category, true
		}
	}
	return "", false
}

func matchesRule(txn model.Transaction, rule Rule) bool {
	if !rule.Pattern.MatchString(txn.Description) {
		return false
	}

	if rule.Account != "" && rule.Account != txn.AccountName {
		return false
	}

	if rule.Amount != nil {
		cmp := txn.Amount.Cmp(rule.Amount.Threshold)
		switch rule.Amount.Op {
		case AmountLess:
			return cmp < 0
		case AmountEqual:
			return cmp == 0
		case AmountGreater:
			return cmp > 0
		}
	}

	return true
}
