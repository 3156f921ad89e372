package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/stats"
)

type Config struct {
	Holder      *chat.Holder
	Path        string // transcript reloaded by ctrl+r
	Load        chat.LoadOptions
	Sentimenter classify.Sentimenter
	Flirter     classify.Flirter
	// Copy writes to the clipboard; nil uses the system clipboard.
	Copy func(string) error
}

// message types

type reloadedMsg struct {
	err error
}

// scorer is implemented by sentimenters that expose a raw polarity score.
type scorer interface {
	Score(text string) float64
}

// model

type model struct {
	cfg         Config
	table       *chat.Table // snapshot on screen
	gen         int         // bumped on every successful reload
	entries     []entry
	cursor      int
	listOffset  int
	analyzer    textinput.Model
	analysis    string
	insights    viewport.Model
	insightsKey string // key of the content on screen
	plain       string // uncoloured insights, for the clipboard
	status      string
	width       int
	height      int
	ready       bool
	quitting    bool
}

func newModel(cfg Config) model {
	if cfg.Holder == nil {
		cfg.Holder = chat.NewHolder(nil)
	}
	if cfg.Flirter == nil {
		cfg.Flirter = classify.NewMarkerFlirter(nil)
	}
	if cfg.Sentimenter == nil {
		cfg.Sentimenter = classify.NewLexicon(nil, classify.DefaultThreshold)
	}
	if cfg.Copy == nil {
		cfg.Copy = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message to analyze..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 1024

	m := model{
		cfg:      cfg,
		analyzer: ti,
		insights: viewport.New(0, 0),
	}
	m.setTable(cfg.Holder.Table())
	return m
}

// Run starts the dashboard and blocks until it exits.
func Run(cfg Config) error {
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// setTable rebuilds the sender list from t and keeps the cursor on the same
// sender when it still exists.
func (m *model) setTable(t *chat.Table) {
	prev := ""
	if m.cursor < len(m.entries) {
		prev = m.entries[m.cursor].sender
	}

	m.table = t
	m.entries = []entry{{total: t.Len(), media: mediaCount(t)}}
	for _, u := range stats.AllUsers(t) {
		m.entries = append(m.entries, entry{sender: u.Sender, total: u.TotalMessages, media: u.MediaCount})
	}

	m.cursor = 0
	for i, e := range m.entries {
		if e.sender == prev {
			m.cursor = i
			break
		}
	}
	m.listOffset = 0
	m.adjustListScroll(m.panelHeight())
}

func mediaCount(t *chat.Table) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if t.At(i).IsMedia {
			n++
		}
	}
	return n
}

// Init triggers the initial insights render.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCurrentInsights())
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.insights = newViewport(m.insightsWidth(), m.panelHeight())
		m.insightsKey = ""
		m.adjustListScroll(m.panelHeight())
		return m, m.loadCurrentInsights()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Reload):
			m.status = "reloading " + m.cfg.Path
			return m, reloadCmd(m.cfg)

		case key.Matches(msg, keys.Copy):
			if m.plain == "" {
				m.status = "nothing to copy"
				return m, nil
			}
			if err := m.cfg.Copy(m.plain); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied " + m.entries[m.cursor].label() + " insights"
			}
			return m, nil

		case key.Matches(msg, keys.Enter):
			m.analysis = analyze(m.cfg.Sentimenter, m.cfg.Flirter, m.analyzer.Value())
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentInsights())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentInsights())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.insights.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.insights.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.insights.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.insights.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to the analyzer input
		var tiCmd tea.Cmd
		m.analyzer, tiCmd = m.analyzer.Update(msg)
		return m, tiCmd

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			visibleItems := m.panelHeight() / linesPerItem
			maxOffset := max(len(m.entries)-visibleItems, 0)
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.entries) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentInsights())
			}
			return m, tea.Batch(cmds...)

		case region == regionInsights && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.insights, vpCmd = m.insights.Update(msg)
			return m, vpCmd
		}

		return m, nil

	case reloadedMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
			logging.L().Warn().Err(msg.err).Str(logging.FieldPath, m.cfg.Path).Msg("dashboard reload")
			return m, nil
		}
		m.gen++
		m.setTable(m.cfg.Holder.Table())
		m.status = fmt.Sprintf("reloaded %d messages", m.table.Len())
		return m, m.loadCurrentInsights()

	case insightsRenderedMsg:
		if msg.key != m.currentKey() || msg.key == m.insightsKey {
			return m, nil // stale or already showing
		}
		if msg.err != nil {
			m.insights.SetContent("Render error: " + msg.err.Error())
			m.plain = ""
		} else {
			m.insights.SetContent(msg.content)
			m.insights.GotoTop()
			m.plain = msg.plain
		}
		m.insightsKey = msg.key
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	insightsW := m.insightsWidth()
	panelH := m.panelHeight()

	inputRow := m.analyzer.View()
	if m.analysis != "" {
		inputRow += "  " + m.analysis
	}

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.insights.Width = insightsW
	m.insights.Height = panelH
	insightsPanel := styleActiveBorder.
		Width(insightsW).
		Height(panelH).
		Render(m.insights.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, insightsPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m model) listWidth() int {
	if m.width <= 0 {
		return 30
	}
	// 30% for the list, minus border padding
	return max(m.width*30/100-4, 20)
}

func (m model) insightsWidth() int {
	if m.width <= 0 {
		return 70
	}
	return max(m.width*70/100-4, 20)
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	return max(m.height-6, 5)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionInsights
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + relY/linesPerItem
	}
	if x > listBoxRight+1 {
		return regionInsights, -1
	}
	return regionNone, -1
}

func (m model) statusBar() string {
	parts := []string{fmt.Sprintf("%d senders", len(m.entries)-1)}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts,
		"up/dn sender",
		"enter analyze",
		"C-r reload",
		"C-y copy",
		"Esc quit",
	)
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) currentKey() string {
	sender := ""
	if m.cursor < len(m.entries) {
		sender = m.entries[m.cursor].sender
	}
	return fmt.Sprintf("%d:%s", m.gen, sender)
}

func (m model) loadCurrentInsights() tea.Cmd {
	key := m.currentKey()
	if key == m.insightsKey {
		return nil // already showing these insights
	}
	sender := m.entries[m.cursor].sender
	return loadInsightsCmd(m.table, key, sender, stats.ReportOptions{
		Transcript:  m.cfg.Path,
		Sentimenter: m.cfg.Sentimenter,
		Flirter:     m.cfg.Flirter,
	})
}

func reloadCmd(cfg Config) tea.Cmd {
	return func() tea.Msg {
		return reloadedMsg{err: cfg.Holder.Reload(context.Background(), cfg.Path, cfg.Load)}
	}
}

// analyze labels text and formats the verdict for the input row.
func analyze(s classify.Sentimenter, f classify.Flirter, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	label := s.Classify(text).OrNeutral()

	style := styleNeutral
	switch label {
	case classify.Positive:
		style = stylePositive
	case classify.Negative:
		style = styleNegative
	}
	verdict := style.Render(string(label))
	if sc, ok := s.(scorer); ok {
		verdict += fmt.Sprintf(" (%.2f)", sc.Score(text))
	}
	return verdict + " · " + string(f.Classify(text))
}
