// Package main is treectl, the treepress admin CLI. It maintains the
// content-category and navigation-menu trees directly against the database:
// printing hierarchies, creating, moving, reordering and deleting nodes.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"treepress/internal/cache"
	"treepress/internal/config"
	"treepress/internal/database"
	"treepress/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "treectl",
	Short:         "Maintain the treepress category and navigation-menu trees",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(treeCmd, flatCmd, addCmd, moveCmd, reorderCmd, rmCmd, bulkCmd, seedCmd)
}

// app bundles the open database handle and both tree stores.
type app struct {
	db         *sql.DB
	categories *store.CategoryStore
	menu       *store.MenuStore
}

// openApp loads configuration, connects, migrates, and wires the stores.
// The returned cleanup closes the database.
func openApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		db.Close()
		return nil, nil, err
	}

	a := &app{
		db:         db,
		categories: store.NewCategoryStore(db),
		menu:       store.NewMenuStore(db),
	}

	if cfg.ValkeyEnabled {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unavailable, tree caching disabled", "error", err)
		} else {
			tc := cache.NewTreeCache(client, cache.DefaultTreeTTL)
			a.categories.WithCache(tc, "categories")
			a.menu.WithCache(tc, "menu")
		}
	}

	return a, func() { db.Close() }, nil
}
