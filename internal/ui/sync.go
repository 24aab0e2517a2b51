package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsubs/internal/tasks"
)

// SyncModel renders a running sync: a spinner with the current stage and a
// progress bar filled by fetched subscriptions.
type SyncModel struct {
	ctx          context.Context
	cancel       context.CancelFunc
	engine       tasks.SyncEngine
	progressChan chan tasks.ProgressUpdate
	doneChan     chan syncCompleteMsg
	update       tasks.ProgressUpdate
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
	result       *tasks.SyncResult
	err          error
	done         bool
}

// NewSyncModel creates the view for one run of engine.
func NewSyncModel(ctx context.Context, engine tasks.SyncEngine) *SyncModel {
	ctx, cancel := context.WithCancel(ctx)
	return &SyncModel{
		ctx:     ctx,
		cancel:  cancel,
		engine:  engine,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(Styles.ok)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the engine and the spinner.
func (m *SyncModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startSync())
}

// Update handles incoming messages and updates the model state.
func (m *SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-8, 60), 10)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.update = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		m.cancel()
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current stage. It is empty once the sync has finished so the
// summary can be printed below the program.
func (m *SyncModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title("Syncing YouTube subscriptions"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), stageLabel(m.update))

	if m.update.Phase == tasks.FetchSubscriptions {
		fmt.Fprintf(&b, "\n%s\n", m.bar.ViewAs(m.update.Fraction()))
	}
	if m.update.Message != "" {
		fmt.Fprintf(&b, "%s\n", Styles.Help(m.update.Message))
	}

	fmt.Fprintf(&b, "\n%s\n", m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// Result returns the engine's outcome once the program has exited.
func (m *SyncModel) Result() (*tasks.SyncResult, error) {
	if !m.done {
		return nil, context.Canceled
	}
	return m.result, m.err
}

func (m *SyncModel) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.doneChan = make(chan syncCompleteMsg, 1)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan)
		close(m.progressChan)
		m.doneChan <- syncCompleteMsg{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *SyncModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return <-m.doneChan
		}
		return progressUpdateMsg(update)
	}
}

func stageLabel(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.Authorize:
		return "Authorizing..."
	case tasks.FetchSubscriptions:
		return fmt.Sprintf("Fetching subscriptions (%d/%d)", u.Step, u.Total)
	case tasks.EncodeOPML:
		return "Encoding OPML..."
	case tasks.ImportOPML:
		return "Importing into Tiny Tiny RSS..."
	case tasks.Completed:
		return "Done"
	default:
		return "Starting..."
	}
}

// RunSync drives engine through the sync view on out and returns its result.
func RunSync(ctx context.Context, engine tasks.SyncEngine, in io.Reader, out io.Writer) (*tasks.SyncResult, error) {
	model := NewSyncModel(ctx, engine)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := program.Run(); err != nil && !model.done {
		return nil, fmt.Errorf("sync view failed: %w", err)
	}
	return model.Result()
}
