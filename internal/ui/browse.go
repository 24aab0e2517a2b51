package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsubs/internal/models"
)

var _ list.Item = subscriptionItem{}

// subscriptionItem wraps [models.Subscription] to implement [list.Item].
type subscriptionItem struct {
	sub models.Subscription
}

func (i subscriptionItem) FilterValue() string { return i.sub.Title }
func (i subscriptionItem) Title() string       { return i.sub.Title }
func (i subscriptionItem) Description() string { return i.sub.ChannelURL() }

// BrowseModel lists subscriptions with filtering and opens the selected channel.
type BrowseModel struct {
	list   list.Model
	keys   keyMap
	open   func(string) error
	status string
}

// NewBrowseModel creates a browser over subs. open is called with the URL to visit.
func NewBrowseModel(subs []models.Subscription, open func(string) error) *BrowseModel {
	items := make([]list.Item, len(subs))
	for i, sub := range subs {
		items[i] = subscriptionItem{sub: sub}
	}

	keys := newKeyMap()
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("YouTube Subscriptions (%d)", len(subs))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keys.open, keys.feed} }

	return &BrowseModel{list: l, keys: keys, open: open}
}

func (m *BrowseModel) Init() tea.Cmd {
	return nil
}

func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.open):
			if sub, ok := m.selected(); ok {
				return m, m.openURL(sub.ChannelURL())
			}
		case key.Matches(msg, m.keys.feed):
			if sub, ok := m.selected(); ok {
				return m, m.openURL(sub.FeedURL())
			}
		}

	case openedMsg:
		if msg.err != nil {
			m.status = Styles.Err(fmt.Sprintf("could not open %s: %v", msg.url, msg.err))
		} else {
			m.status = Styles.OK("opened " + msg.url)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *BrowseModel) View() string {
	if m.status == "" {
		return m.list.View()
	}
	return m.list.View() + "\n" + m.status
}

func (m *BrowseModel) selected() (models.Subscription, bool) {
	item, ok := m.list.SelectedItem().(subscriptionItem)
	return item.sub, ok
}

func (m *BrowseModel) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		if m.open == nil {
			return openedMsg{url: url, err: fmt.Errorf("no browser configured")}
		}
		return openedMsg{url: url, err: m.open(url)}
	}
}

// Browse runs the subscription browser until the user quits.
func Browse(subs []models.Subscription, open func(string) error, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(NewBrowseModel(subs, open), tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
	_, err := program.Run()
	return err
}
