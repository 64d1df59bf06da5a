package cmd

import (
	"context"
	"fmt"

	"comment-mirror/core/config"
	"comment-mirror/core/database"
	"comment-mirror/core/logger"
	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd pushes the mirror into the configured relational database.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the mirror to a relational database",
	Long: `Export every mirror row into the configured database (sqlite by
default). Re-running updates existing rows in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		store, err := mirror.Open(cfg.Mirror.Path, l)
		if err != nil {
			return fmt.Errorf("failed to open mirror: %w", err)
		}
		defer store.Close()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		exporter := export.New(db, l)
		if err := exporter.Export(ctx, store.Comments()); err != nil {
			return err
		}

		n, err := exporter.Count(ctx)
		if err != nil {
			return err
		}
		l.Info("Export table ready",
			zap.String("driver", cfg.Database.Driver),
			zap.Int64("rows", n),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
}
