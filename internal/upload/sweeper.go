// Copyright (c) 2026 Clipflow. All rights reserved.

package upload

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper reclaims abandoned upload sessions in the background: any
// session without progress for the retention window is deleted together
// with its staging file.
type Sweeper struct {
	sessions  SessionRepository
	files     FileStore
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
}

// NewSweeper constructs a [Sweeper]. Typical values come from
// constants.UploadSweepInterval and constants.UploadSessionRetention.
func NewSweeper(sessions SessionRepository, files FileStore, logger *slog.Logger, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		sessions:  sessions,
		files:     files,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}
}

// Run sweeps on a fixed interval until the context is cancelled. It is
// meant to be launched as a goroutine from main.
func (sweeper *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	sweeper.logger.Info("upload_sweeper_started",
		slog.Duration("interval", sweeper.interval),
		slog.Duration("retention", sweeper.retention),
	)

	for {
		select {
		case <-ctx.Done():
			sweeper.logger.Info("upload_sweeper_stopped")
			return
		case <-ticker.C:
			sweeper.SweepOnce(ctx)
		}
	}
}

// SweepOnce reclaims every session idle past the retention window and
// returns the number of sessions removed.
func (sweeper *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := time.Now().Add(-sweeper.retention)

	abandoned, err := sweeper.sessions.ListIdleSince(ctx, cutoff)
	if err != nil {
		sweeper.logger.Error("upload_sweep_list_failed", slog.Any("error", err))
		return 0
	}

	removed := 0
	for _, session := range abandoned {
		// Temp file first: if the record delete fails the session is
		// retried next sweep, and RemoveTemp is idempotent.
		if err := sweeper.files.RemoveTemp(session.TempKey); err != nil {
			sweeper.logger.Warn("upload_sweep_temp_remove_failed",
				slog.String("upload_id", session.ID),
				slog.Any("error", err),
			)
			continue
		}

		if err := sweeper.sessions.Delete(ctx, session.ID); err != nil {
			sweeper.logger.Warn("upload_sweep_session_delete_failed",
				slog.String("upload_id", session.ID),
				slog.Any("error", err),
			)
			continue
		}

		removed++
	}

	if removed > 0 {
		sweeper.logger.Info("upload_sweep_completed", slog.Int("removed", removed))
	}

	return removed
}
