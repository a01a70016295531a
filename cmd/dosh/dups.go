package main

import (
	"fmt"
	"log/slog"

	"github.com/dosh-dev/dosh/internal/audit"
	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/config"
	"github.com/dosh-dev/dosh/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func dupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dups",
		Short: "Scan stored transactions for duplicate candidates",
		Long: `Scan every pair of stored transactions for rows that share a date,
amount, and whitespace-normalized description despite distinct fingerprints.
These usually predate a fingerprint-formula change.

For each pair a DELETE statement for the lower id is printed. Nothing is
deleted automatically; review the suggestions and run them yourself.`,
		RunE: runDups,
	}
}

func runDups(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.DatabasePath)
	if err != nil {
		return common.NewUserError("failed to open database", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	rows, err := store.ListTransactions(ctx)
	if err != nil {
		return err
	}

	slog.Info("Scanning for duplicates", "rows", len(rows))

	bar := progressbar.Default(int64(len(rows)), "scanning")
	pairs := audit.FindDuplicates(rows, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	if len(pairs) == 0 {
		slog.Info("No duplicate candidates found")
		return nil
	}

	slog.Info("Duplicate candidates found", "pairs", len(pairs))
	for _, pair := range pairs {
		fmt.Printf("delete from transactions where id = %d;\n", pair.LowID)
	}

	return nil
}
