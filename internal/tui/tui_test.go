package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
)

var loadOpts = chat.LoadOptions{Options: chat.Options{Parse: parse.Options{DayFirst: true}}}

func table(lines ...string) *chat.Table {
	in := make([]scan.Line, len(lines))
	for i, l := range lines {
		in[i] = scan.Line{Number: i + 1, Text: l}
	}
	return chat.Build(in, loadOpts.Options)
}

func testModel(t *testing.T, copied *string) model {
	t.Helper()
	h := chat.NewHolder(table(
		"12/05/23, 10:30 AM - Alice: Hello there",
		"12/05/23, 10:31 AM - Bob: Hi Alice 😍",
		"12/05/23, 10:32 AM - Bob: <Media omitted>",
	))
	return newModel(Config{
		Holder: h,
		Path:   filepath.Join(t.TempDir(), "missing.txt"),
		Load:   loadOpts,
		Copy: func(s string) error {
			if copied == nil {
				return errors.New("no clipboard")
			}
			*copied = s
			return nil
		},
	})
}

// step applies msg and runs the returned command once, feeding its result
// back in when it is an insights or reload message.
func step(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	if k, ok := msg.(tea.KeyMsg); cmd == nil || (ok && k.Type == tea.KeyRunes) {
		return m // runes only yield cursor blink ticks
	}
	return feed(t, m, cmd())
}

func feed(t *testing.T, m model, out tea.Msg) model {
	t.Helper()
	switch out := out.(type) {
	case insightsRenderedMsg, reloadedMsg:
		return step(t, m, out)
	case tea.BatchMsg:
		for _, c := range out {
			if c != nil {
				m = feed(t, m, c())
			}
		}
	}
	return m
}

func hasLinePrefix(text, prefix string) bool {
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestEntries(t *testing.T) {
	m := testModel(t, nil)
	require.Len(t, m.entries, 3)
	assert.Equal(t, everyone, m.entries[0].label())
	assert.Equal(t, 3, m.entries[0].total)
	assert.Equal(t, 1, m.entries[0].media)
	assert.Equal(t, entry{sender: "Bob", total: 2, media: 1}, m.entries[2])
}

func TestNavigateAndRenderInsights(t *testing.T) {
	m := testModel(t, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.True(t, m.ready)
	assert.Equal(t, "0:", m.insightsKey)
	assert.Contains(t, m.plain, "Most talkative:  Bob (2)")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, "0:Alice", m.insightsKey)
	assert.True(t, hasLinePrefix(m.plain, "Alice "))
	assert.False(t, hasLinePrefix(m.plain, "Bob "))

	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Zero(t, m.cursor)

	view := m.View()
	assert.Contains(t, view, "2 senders")
	assert.Contains(t, view, everyone)
}

func TestStaleInsightsIgnored(t *testing.T) {
	m := testModel(t, nil)
	next, _ := m.Update(insightsRenderedMsg{key: "0:Nobody", content: "x", plain: "x"})
	assert.Empty(t, next.(model).plain)
}

func TestAnalyzer(t *testing.T) {
	m := testModel(t, nil)
	for _, r := range "love it 😍" {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "love it 😍", m.analyzer.Value())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.analysis, "Positive")
	assert.Contains(t, m.analysis, "Flirt")

	assert.Empty(t, analyze(classify.NewLexicon(nil, -1), classify.NewMarkerFlirter(nil), "   "))
	plain := analyze(classify.SentimentFunc(func(string) classify.Sentiment { return "?" }), classify.NewMarkerFlirter(nil), "ok")
	assert.True(t, strings.HasSuffix(plain, "· Normal"))
	assert.Contains(t, plain, "Neutral")
}

func TestCopy(t *testing.T) {
	var copied string
	m := testModel(t, &copied)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "nothing to copy", m.status)

	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, m.plain, copied)
	assert.Contains(t, m.status, "copied Everyone")

	failing := testModel(t, nil)
	failing = step(t, failing, tea.WindowSizeMsg{Width: 100, Height: 30})
	failing = step(t, failing, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Contains(t, failing.status, "copy failed")
}

func TestReload(t *testing.T) {
	m := testModel(t, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown}) // Alice

	// missing file keeps the old table
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Contains(t, m.status, "reload failed")
	assert.Equal(t, 3, m.table.Len())
	assert.Zero(t, m.gen)

	require.NoError(t, os.WriteFile(m.cfg.Path, []byte(
		"12/05/23, 10:00 - Carol: first\n"+
			"12/05/23, 10:01 - Alice: still here\n"), 0o644))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, "reloaded 2 messages", m.status)
	assert.Equal(t, 1, m.gen)
	require.Len(t, m.entries, 3)
	assert.Equal(t, "Alice", m.entries[m.cursor].sender)
	assert.Equal(t, "1:Alice", m.insightsKey)
	assert.Same(t, m.cfg.Holder.Table(), m.table)
}

func TestHitTest(t *testing.T) {
	m := testModel(t, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	region, idx := m.hitTest(2, 2)
	assert.Equal(t, regionList, region)
	assert.Zero(t, idx)

	region, idx = m.hitTest(2, 4)
	assert.Equal(t, regionList, region)
	assert.Equal(t, 1, idx)

	region, _ = m.hitTest(m.listWidth()+5, 3)
	assert.Equal(t, regionInsights, region)

	region, _ = m.hitTest(2, 0)
	assert.Equal(t, regionNone, region)
}

func TestQuit(t *testing.T) {
	m := testModel(t, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(model).quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.(model).View())
}
