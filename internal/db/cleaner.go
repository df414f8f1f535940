package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// StartSoftDeleteCleaner purges rows soft-deleted more than retention ago,
// once per interval, until ctx is done.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := Purge(ctx, db, time.Now().Add(-retention))
				if err != nil {
					log.Error("failed to clean soft-deleted rows", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned soft-deleted rows", zap.Int64("removed", removed))
				}
			}
		}
	}()
}

// Purge hard-deletes transactions and then categories whose deleted_at is
// older than cutoff. It returns the number of removed rows.
func Purge(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"transactions", "categories"} {
		res, err := db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE deleted_at IS NOT NULL AND deleted_at < $1", cutoff)
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
