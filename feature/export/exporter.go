package export

import (
	"context"
	"fmt"
	"time"

	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 500

// Exporter pushes mirror rows into a relational database so the data can
// be queried with SQL instead of scanning the flat file.
type Exporter struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates an exporter over an established connection.
func New(db *gorm.DB, log *zap.Logger) *Exporter {
	return &Exporter{db: db, log: log}
}

// Export upserts every comment into the comments table. Re-exporting is
// idempotent: rows are keyed by comment_id and updated in place.
func (e *Exporter) Export(ctx context.Context, comments []models.Comment) error {
	start := time.Now()

	if err := e.db.WithContext(ctx).AutoMigrate(&MirrorComment{}); err != nil {
		return fmt.Errorf("failed to migrate comments table: %w", err)
	}

	rows := make([]MirrorComment, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, FromComment(c))
	}

	if len(rows) == 0 {
		e.log.Info("Nothing to export")
		return nil
	}

	err := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to export comments: %w", err)
	}

	e.log.Info("Export complete",
		zap.Int("comments", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Count reports how many rows the export table holds.
func (e *Exporter) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := e.db.WithContext(ctx).Model(&MirrorComment{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count exported comments: %w", err)
	}
	return n, nil
}
