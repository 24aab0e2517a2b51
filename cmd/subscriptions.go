package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytsubs/internal/formatter"
	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/desertthunder/ytsubs/internal/ui"
	"github.com/urfave/cli/v3"
)

// Export fetches subscriptions and writes the OPML document to stdout or --output.
// Nothing is sent to the feed reader.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	category := config.App.CategoryName
	if c := cmd.String("category"); c != "" {
		category = c
	}
	if category == "" {
		return fmt.Errorf("%w: category name is empty", shared.ErrInvalidConfig)
	}

	engine, err := r.engine(ctx, config, category, false)
	if err != nil {
		return err
	}

	progress, wait := r.logProgress()
	result, err := engine.Export(ctx, progress)
	wait()
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteOPMLFile(path, result.Document); err != nil {
			return err
		}
		r.logger.Info("OPML written", "path", path, "feeds", len(result.Subscriptions))
		return nil
	}

	if _, err := r.output.Write(result.Document); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Subscriptions lists the user's subscriptions as a table, plain text, JSON or an
// interactive browser.
func (r *Runner) Subscriptions(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	ts, err := r.tokenSource(ctx, config)
	if err != nil {
		return err
	}

	subs, err := r.youtube(config, ts).FetchAll(ctx, func(current, total int) {
		r.logger.Debug("fetched subscriptions", "current", current, "total", total)
	})
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(subs, cmd.Bool("pretty"))
	case cmd.Bool("plain"):
		text, err := formatter.ExportToText(subs)
		if err != nil {
			return err
		}
		return r.writePlain("%s", text)
	case cmd.Bool("browse"):
		if !r.interactive {
			return fmt.Errorf("%w: --browse needs an interactive terminal", shared.ErrInvalidArgument)
		}
		return ui.Browse(subs, r.openURL, r.input, r.output)
	default:
		return ui.RenderSubscriptions(r.output, subs)
	}
}
