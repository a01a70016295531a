package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dosh-dev/dosh/internal/accounts"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/config"
	"github.com/dosh-dev/dosh/internal/model"
	"github.com/dosh-dev/dosh/internal/parser"
	"github.com/dosh-dev/dosh/internal/rules"
	"github.com/dosh-dev/dosh/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank export files",
		Long: `Import transactions from bank and credit-card export files.

Each format flag takes a glob pattern. Parsed rows are classified against
the configured rules and inserted into the database; rows whose fingerprint
is already stored are silently skipped, so re-importing a file is safe.

Examples:
  # Import an aggregator export
  dosh import --aggregator ~/Downloads/export.csv

  # Import several formats in one run
  dosh import --ledger '~/statements/bank-*.csv' --card '~/statements/card-*.tsv'

  # Preview classification without touching the database
  dosh import --aggregator export.csv --dry-run`,
		RunE: runImport,
	}

	cmd.Flags().StringSlice("aggregator", nil, "glob pattern for aggregator CSV exports")
	cmd.Flags().StringSlice("ledger", nil, "glob pattern for bank-ledger CSV exports")
	cmd.Flags().StringSlice("card", nil, "glob pattern for card TSV exports")
	cmd.Flags().StringSlice("society", nil, "glob pattern for building-society CSV exports")
	cmd.Flags().Bool("dry-run", false, "print classified rows instead of inserting")

	_ = viper.BindPFlag("import.aggregator", cmd.Flags().Lookup("aggregator"))
	_ = viper.BindPFlag("import.ledger", cmd.Flags().Lookup("ledger"))
	_ = viper.BindPFlag("import.card", cmd.Flags().Lookup("card"))
	_ = viper.BindPFlag("import.society", cmd.Flags().Lookup("society"))
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	matcher, err := cfg.Matcher()
	if err != nil {
		return err
	}

	parsers, err := buildParsers(cfg, resolver)
	if err != nil {
		return err
	}

	var transactions []model.Transaction
	for _, src := range parsers {
		parsed, err := parseGlobs(src.parser, src.globs)
		if err != nil {
			return err
		}
		transactions = append(transactions, parsed...)
	}

	if len(transactions) == 0 {
		slog.Warn("No transactions parsed")
		return nil
	}

	classify(matcher, transactions)

	if viper.GetBool("import.dry_run") {
		printClassified(transactions)
		return nil
	}

	store, err := storage.NewStore(cfg.DatabasePath)
	if err != nil {
		return common.NewUserError("failed to open database", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	inserted, err := store.InsertTransactions(ctx, transactions)
	if err != nil {
		return common.NewUserError("failed to save transactions", err)
	}

	common.LogInfo("Import complete", common.Fields{
		"parsed":     len(transactions),
		"inserted":   inserted,
		"duplicates": len(transactions) - inserted,
	})

	return nil
}

type formatSource struct {
	parser parser.Parser
	globs  []string
}

// buildParsers wires a parser for every format the invocation selected.
// Single-account formats resolve their source account up front, so an
// unknown configured label fails before any file is opened.
func buildParsers(cfg *config.Config, resolver *accounts.Resolver) ([]formatSource, error) {
	var sources []formatSource

	if globs := viper.GetStringSlice("import.aggregator"); len(globs) > 0 {
		sources = append(sources, formatSource{
			parser: parser.NewAggregatorParser(resolver),
			globs:  globs,
		})
	}

	if globs := viper.GetStringSlice("import.ledger"); len(globs) > 0 {
		if cfg.Sources.Ledger == "" {
			return nil, fmt.Errorf("%w: sources.ledger account label", common.ErrMissingConfig)
		}
		p, err := parser.NewLedgerParser(resolver, cfg.Sources.Ledger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, formatSource{parser: p, globs: globs})
	}

	if globs := viper.GetStringSlice("import.card"); len(globs) > 0 {
		if cfg.Sources.Card == "" {
			return nil, fmt.Errorf("%w: sources.card account label", common.ErrMissingConfig)
		}
		p, err := parser.NewCardParser(resolver, cfg.Sources.Card)
		if err != nil {
			return nil, err
		}
		sources = append(sources, formatSource{parser: p, globs: globs})
	}

	if globs := viper.GetStringSlice("import.society"); len(globs) > 0 {
		sources = append(sources, formatSource{
			parser: parser.NewSocietyParser(resolver),
			globs:  globs,
		})
	}

	return sources, nil
}

func classify(matcher *rules.Matcher, transactions []model.Transaction) {
	for i := range transactions {
		if category, ok := matcher.Classify(transactions[i]); ok {
			transactions[i].Category = category
		}
	}
}

// parseGlobs expands each glob and parses every matching file. A parse error
// aborts the offending file's whole import.
func parseGlobs(p parser.Parser, globs []string) ([]model.Transaction, error) {
	var files []string
	for _, pattern := range globs {
		matches, err := filepath.Glob(config.ExpandPath(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			common.LogWarn("No files found matching pattern", common.Fields{
				"format":  p.Format(),
				"pattern": pattern,
			})
			continue
		}
		files = append(files, matches...)
	}

	var transactions []model.Transaction
	for _, path := range files {
		slog.Info("Parsing file", "format", p.Format(), "file", filepath.Base(path))

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		parsed, err := p.Parse(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		transactions = append(transactions, parsed...)
	}

	return transactions, nil
}

// printClassified prints the rows the rule set classified, the dry-run view
// used when tuning rules.
func printClassified(transactions []model.Transaction) {
	for _, txn := range transactions {
		if txn.Category == "Unknown" {
			continue
		}
		fmt.Printf("%s %s %s %s\n",
			txn.Date.Format(model.ISODate),
			txn.Description,
			txn.Amount.StringFixed(2),
			txn.Category)
	}
}
