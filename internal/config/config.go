// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dosh-dev/dosh/internal/accounts"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/rules"
	"github.com/spf13/viper"
)

// RuleConfig is the configuration form of a classification rule. Amount is a
// comparator followed by a threshold, e.g. "<0" or ">1000".
type RuleConfig struct {
	Pattern  string `mapstructure:"pattern"`
	Account  string `mapstructure:"account"`
	Amount   string `mapstructure:"amount"`
	Category string `mapstructure:"category"`
}

// SourceAccounts names the raw account label each single-account export
// format belongs to. The building-society export carries its own account
// name in the file preamble, so it needs no entry here.
type SourceAccounts struct {
	Ledger string `mapstructure:"ledger"`
	Card   string `mapstructure:"card"`
}

// Config is the application configuration, loaded once at process start and
// immutable thereafter.
type Config struct {
	DatabasePath string            `mapstructure:"database"`
	Accounts     map[string]string `mapstructure:"accounts"`
	Ignore       []string          `mapstructure:"ignore"`
	Rules        []RuleConfig      `mapstructure:"rules"`
	Sources      SourceAccounts    `mapstructure:"sources"`
}

// Load unmarshals the configuration viper has already read. The database
// path defaults to ~/.config/dosh/dosh.db.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DatabasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DatabasePath = filepath.Join(home, ".config", "dosh", "dosh.db")
	} else {
		cfg.DatabasePath = ExpandPath(cfg.DatabasePath)
	}

	return &cfg, nil
}

// Resolver builds the account name resolver from the configured mapping and
// ignore patterns.
func (c *Config) Resolver() (*accounts.Resolver, error) {
	if len(c.Accounts) == 0 {
		return nil, fmt.Errorf("%w: no account names configured", common.ErrMissingConfig)
	}
	return accounts.NewResolver(c.Accounts, c.Ignore)
}

// Matcher compiles the configured rule list, preserving its order.
func (c *Config) Matcher() (*rules.Matcher, error) {
	compiled := make([]rules.Rule, 0, len(c.Rules))
	for i, rc := range c.Rules {
		rule, err := rules.NewRule(rc.Pattern, rc.Account, rc.Amount, rc.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", common.ErrInvalidConfig, i+1, err)
		}
		compiled = append(compiled, rule)
	}
	return rules.NewMatcher(compiled), nil
}
