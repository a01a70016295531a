package main

import (
	"log/slog"

	"github.com/dosh-dev/dosh/internal/common"
	"github.com/dosh-dev/dosh/internal/config"
	"github.com/dosh-dev/dosh/internal/model"
	"github.com/dosh-dev/dosh/internal/storage"
	"github.com/spf13/cobra"
)

func rehashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rehash",
		Short: "Recompute the fingerprint of every stored transaction",
		Long: `Recompute fingerprints for all stored transactions using the current
formula and the stored field values, keyed by row id. Run this after a
fingerprint-formula change so that re-imports stay idempotent.`,
		RunE: runRehash,
	}
}

func runRehash(cmd *cobra.Command, _ []string) error {
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

	updated, err := store.Rehash(ctx, func(txn model.StoredTransaction) string {
		return model.Fingerprint(txn.Date, txn.Description, txn.Amount, txn.AccountName)
	})
	if err != nil {
		return err
	}

	slog.Info("Rehash complete", "updated", updated)
	return nil
}
