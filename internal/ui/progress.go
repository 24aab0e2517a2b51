package ui

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/tasks"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// LogProgress logs each update from progress until the channel is closed.
// Fetch updates are logged at info level so page-by-page progress shows in non-interactive runs.
func LogProgress(logger *log.Logger, progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		switch update.Phase {
		case tasks.FetchSubscriptions:
			logger.Info(update.Message, "phase", update.Phase, "current", update.Step, "total", update.Total)
		default:
			logger.Info(update.Message, "phase", update.Phase)
		}
	}
}
