// Package ui renders sync progress and results in the terminal.
//
// [SyncModel] is a bubbletea program that runs a [tasks.SyncEngine] in the
// background and receives its [tasks.ProgressUpdate] values over a channel, showing
// a spinner for the current stage and a progress bar while subscriptions are
// fetched. When stdout is not a terminal, [LogProgress] writes the same updates as
// log lines instead.
//
// [BrowseModel] lists fetched subscriptions with fuzzy filtering and opens the
// selected channel or feed in a browser.
//
// Summaries are tables built with go-pretty; colors come from the lipgloss [Palette].
package ui
