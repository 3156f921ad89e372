package tui

import (
	"bytes"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/render"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/stats"
)

// insightsRenderedMsg is sent when an async insights render completes.
type insightsRenderedMsg struct {
	key     string
	content string // with ANSI colour
	plain   string // for the clipboard
	err     error
}

// loadInsightsCmd renders the report for sender ("" = everyone) off the UI
// goroutine. The table is the snapshot taken when the command was built.
func loadInsightsCmd(t *chat.Table, key, sender string, opts stats.ReportOptions) tea.Cmd {
	return func() tea.Msg {
		opts.User = sender
		r := stats.BuildReport(t, opts)

		var colored, plain bytes.Buffer
		if err := render.Report(&colored, r, true); err != nil {
			return insightsRenderedMsg{key: key, err: err}
		}
		if err := render.Report(&plain, r, false); err != nil {
			return insightsRenderedMsg{key: key, err: err}
		}
		return insightsRenderedMsg{key: key, content: colored.String(), plain: plain.String()}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}
