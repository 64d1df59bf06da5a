package cmd

import (
	"fmt"

	"comment-mirror/core/config"
	"comment-mirror/core/logger"
	"comment-mirror/feature/comments/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// verifyCmd reports mirror integrity without touching upstream.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report mirror integrity (counts, gaps, duplicates)",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		report := store.Verify()
		l.Info("Mirror integrity",
			zap.String("path", store.Path()),
			zap.Int("comments", report.Comments),
			zap.Int("media", report.Media),
			zap.Int("empty_media", report.EmptyMedia),
			zap.Int64("max_id", report.MaxID),
			zap.Int("missing_ids", report.MissingIDs),
			zap.Int("absent_ids", report.AbsentIDs),
			zap.Int("duplicate_ids", len(report.DuplicateIDs)),
		)

		if len(report.DuplicateIDs) > 0 {
			l.Warn("Duplicate rows found; run a daily sync to rewrite the mirror",
				zap.Int64s("comment_ids", report.DuplicateIDs))
			return fmt.Errorf("mirror has %d duplicate rows", len(report.DuplicateIDs))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
}
