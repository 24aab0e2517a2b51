package ui

import (
	"github.com/desertthunder/ytsubs/internal/tasks"
)

// progressUpdateMsg carries one pipeline update into the sync view.
type progressUpdateMsg tasks.ProgressUpdate

// syncCompleteMsg is sent once the engine returns.
type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}

// openedMsg reports the outcome of opening a URL from the browse view.
type openedMsg struct {
	url string
	err error
}
