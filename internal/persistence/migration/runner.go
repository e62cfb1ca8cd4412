package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Run applies every migration whose version is not yet recorded, in order.
func Run(ctx context.Context, executor *Executor, migrations []Migration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	started := time.Now()

	if err := executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	applied, err := executor.AppliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied versions: %w", err)
	}
	done := make(map[string]struct{}, len(applied))
	for _, a := range applied {
		done[a.Version] = struct{}{}
	}

	var pending []Migration
	for _, m := range migrations {
		if _, ok := done[m.Version]; !ok {
			pending = append(pending, m)
		}
	}

	current := ""
	if len(applied) > 0 {
		current = applied[len(applied)-1].Version
	}
	logger.Info("schema version checked", "current_version", current, "pending", len(pending))
	if len(pending) == 0 {
		return nil
	}

	for i, m := range pending {
		migrationStarted := time.Now()
		logger.Info("applying migration", "version", m.Version, "description", m.Description, "step", i+1, "of", len(pending))

		if err := executor.ExecuteMigration(ctx, m); err != nil {
			logger.Error("migration failed", "version", m.Version, "file", m.FilePath, "error", err)
			return NewMigrationError(m.Version, m.FilePath, "execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
		elapsed := time.Since(migrationStarted)
		if err := executor.RecordMigration(ctx, m, elapsed); err != nil {
			return NewMigrationError(m.Version, m.FilePath, "record migration", err)
		}
		logger.Info("migration applied", "version", m.Version, "duration", elapsed)
	}

	logger.Info("migrations completed", "count", len(pending), "duration", time.Since(started))
	return nil
}
