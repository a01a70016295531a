package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dosh-dev/dosh/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
database: /tmp/dosh-test.db
accounts:
  HSBC: My Bank Account
  Egg Card: Egg Card
ignore:
  - System generated transaction
rules:
  - pattern: "ACME.*"
    category: Shopping
  - pattern: "ACME CORP"
    amount: ">1000"
    category: Salary
sources:
  ledger: HSBC
  card: Egg Card
`

func loadTestConfig(t *testing.T, content string) *Config {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(content)))

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadTestConfig(t, testConfig)

	assert.Equal(t, "/tmp/dosh-test.db", cfg.DatabasePath)
	assert.Len(t, cfg.Accounts, 2)
	assert.Equal(t, []string{"System generated transaction"}, cfg.Ignore)
	assert.Equal(t, "HSBC", cfg.Sources.Ledger)
	assert.Equal(t, "Egg Card", cfg.Sources.Card)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "Shopping", cfg.Rules[0].Category)
}

func TestLoad_DefaultDatabasePath(t *testing.T) {
	cfg := loadTestConfig(t, "accounts:\n  HSBC: My Bank Account\n")

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "dosh", "dosh.db"), cfg.DatabasePath)
}

func TestConfig_Resolver(t *testing.T) {
	cfg := loadTestConfig(t, testConfig)

	resolver, err := cfg.Resolver()
	require.NoError(t, err)

	name, err := resolver.Resolve("HSBC")
	require.NoError(t, err)
	assert.Equal(t, "My Bank Account", name)
	assert.True(t, resolver.ShouldIgnore("System generated transaction to honor balance"))
}

func TestConfig_Resolver_NoAccounts(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.Resolver()
	assert.Error(t, err)
}

func TestConfig_Matcher_PreservesOrder(t *testing.T) {
	cfg := loadTestConfig(t, testConfig)

	matcher, err := cfg.Matcher()
	require.NoError(t, err)

	// Both rules match; the first configured rule must win.
	category, ok := matcher.Classify(model.Transaction{
		Description: "ACME CORP",
		Amount:      decimal.NewFromInt(2000),
	})
	require.True(t, ok)
	assert.Equal(t, "Shopping", category)
}

func TestConfig_Matcher_InvalidRule(t *testing.T) {
	cfg := &Config{Rules: []RuleConfig{{Pattern: "(", Category: "Broken"}}}
	_, err := cfg.Matcher()
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "dosh.db"), ExpandPath("~/dosh.db"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "", ExpandPath(""))

	t.Setenv("DOSH_TEST_DIR", "/data")
	assert.Equal(t, "/data/dosh.db", ExpandPath("$DOSH_TEST_DIR/dosh.db"))
}
