package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/desertthunder/ytsubs/internal/tasks"
	"github.com/desertthunder/ytsubs/internal/ui"
	"github.com/urfave/cli/v3"
)

// LogFileName receives logs while the terminal UI owns the screen.
const LogFileName = "ytsubs.log"

// Sync fetches every subscription, encodes them and imports the document into
// Tiny Tiny RSS. With --schedule it keeps running and repeats on the cron schedule.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}
	if category := cmd.String("category"); category != "" {
		config.App.CategoryName = category
	}
	if err := config.Validate(); err != nil {
		return err
	}

	lock, err := shared.AcquireLock(r.configDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release lock", "path", lock.Path(), "error", err)
		}
	}()

	spec := cmd.String("schedule")
	if spec == "" {
		return r.syncOnce(ctx, config, cmd.Bool("plain") || !r.interactive)
	}

	scheduler, err := tasks.NewScheduler(spec, r.logger)
	if err != nil {
		return err
	}
	if err := r.syncOnce(ctx, config, true); err != nil {
		r.logger.Error("initial sync failed", "error", err)
	}
	return scheduler.Run(ctx, func(ctx context.Context) error {
		return r.syncOnce(ctx, config, true)
	})
}

func (r *Runner) syncOnce(ctx context.Context, config *shared.Config, plain bool) error {
	if !plain {
		restore := r.useFileLogger()
		defer func() {
			if err := restore(); err != nil {
				r.logger.Warn("failed to restore logger", "error", err)
			}
		}()
	}

	engine, err := r.engine(ctx, config, config.App.CategoryName, true)
	if err != nil {
		return err
	}

	var result *tasks.SyncResult
	if plain {
		progress, wait := r.logProgress()
		result, err = engine.Run(ctx, progress)
		wait()
	} else {
		result, err = ui.RunSync(ctx, engine, r.input, r.output)
	}
	if err != nil {
		return err
	}

	if err := ui.RenderReport(r.output, result.Summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := r.writePlain("\n"); err != nil {
		return err
	}
	if err := ui.RenderSummary(r.output, len(result.Subscriptions), result.Summary, result.Duration); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// logProgress starts logging updates sent on the returned channel. wait closes the
// channel and blocks until every update has been logged.
func (r *Runner) logProgress() (chan<- tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		ui.LogProgress(r.logger, progress)
		close(done)
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

// useFileLogger redirects logs to the config directory so they do not interfere
// with the terminal UI. The returned func restores the previous logger and closes
// the log file.
func (r *Runner) useFileLogger() func() error {
	path := filepath.Join(r.configDir, LogFileName)
	fileLogger, file, err := shared.NewFileLogger(path)
	if err != nil {
		r.logger.Warn("failed to create file logger", "error", err)
		return func() error { return nil }
	}
	fileLogger.SetLevel(r.logger.GetLevel())

	previous := r.logger
	r.logger = fileLogger
	return func() error {
		r.logger = previous
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		return nil
	}
}
