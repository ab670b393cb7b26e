package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"medsupply/backend/internal/blob"
	"medsupply/backend/internal/cache"
	"medsupply/backend/internal/config"
	"medsupply/backend/internal/console"
	"medsupply/backend/internal/service"
	"medsupply/backend/internal/store"
	"medsupply/backend/internal/store/memory"
	pgstore "medsupply/backend/internal/store/postgres"
)

// Global flags
var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "medsupply",
	Short: "Management console for the medical-supply backend",
	Long: `Command-line console for the medical-supply backend: client records,
product inventory, sale transactions with invoice PDFs, and company
settings.

Without --db (or DATABASE_URL) it runs against seeded in-memory data,
which is handy for trying commands out.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "Postgres connection URL (defaults to DATABASE_URL)")
}

// openWorkspace builds one console session against the configured
// repository and primes every cache, the same way the web console does on
// page load.
func openWorkspace(ctx context.Context) (*console.Workspace, *service.Service, func(), error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	var repo store.Repository
	cleanup := func() {}
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo = pg
		cleanup = func() { _ = pg.Close() }
	} else {
		repo = memory.NewSeeded()
	}

	blobs, err := blob.NewFS(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("blob storage: %w", err)
	}

	svc := service.New(repo, cache.NoopSettingsCache{}, blobs, time.Duration(cfg.SettingsTTLSeconds)*time.Second)
	ws := console.NewWorkspace(svc)
	ws.Load(ctx)
	return ws, svc, cleanup, nil
}

func storeError(msg string) error {
	if msg == "" {
		return nil
	}
	return fmt.Errorf("%s", msg)
}
