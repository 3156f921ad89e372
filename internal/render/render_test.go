package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/stats"
)

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"abc"}, wrapLine("abc", 0))
	assert.Equal(t, []string{""}, wrapLine("", 5))

	// wide runes take two columns; escapes take none
	assert.Equal(t, []string{"你好", "世界"}, wrapLine("你好世界", 4))
	assert.Equal(t, []string{"\033[1mab", "c\033[0m"}, wrapLine("\033[1mabc\033[0m", 2))
}

func TestHighlightKeywords(t *testing.T) {
	assert.Equal(t, "say [Hi] and [hi]", highlightKeywords("say Hi and hi", "hi", "[", "]"))
	assert.Equal(t, "[pizza] or pasta", highlightKeywords("pizza or pasta", "pizza OR", "[", "]"))
	assert.Equal(t, "pizza", highlightKeywords("pizza", "pizza", "", ""))
	assert.Equal(t, "[pizza]", highlightKeywords("pizza", `"pizza"`, "[", "]"))
}

func TestFitName(t *testing.T) {
	assert.Equal(t, "Bob   ", FitName("Bob", 6))
	assert.Equal(t, 6, runewidth.StringWidth(FitName("李小龙先生", 6)))
	assert.Equal(t, 4, runewidth.StringWidth(FitName("Alexandra", 4)))
}

func TestWhen(t *testing.T) {
	assert.Equal(t, "2023-05-12 09h", When("2023-05-12", 9))
	assert.Equal(t, "????-??-?? ??h", When("", -1))
}

func buildReport(lines ...string) stats.Report {
	in := make([]scan.Line, len(lines))
	for i, l := range lines {
		in[i] = scan.Line{Number: i + 1, Text: l}
	}
	tbl := chat.Build(in, chat.Options{Parse: parse.Options{DayFirst: true}})
	return stats.BuildReport(tbl, stats.ReportOptions{Transcript: "chat.txt", Sentimenter: classify.NewLexicon(nil, -1)})
}

func TestReportPlain(t *testing.T) {
	r := buildReport(
		"12/05/23, 10:30 AM - Alice: Hello there",
		"12/05/23, 10:31 AM - Bob: Hi Alice 😍",
		"12/05/23, 10:32 AM - Bob: <Media omitted>",
		"12/05/23, Alice added Bob",
	)
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, r, false))
	out := buf.String()

	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "Transcript: chat.txt")
	assert.Contains(t, out, "Records: 3 (4 lines, 1 skipped, 0 unknown timestamps)")
	assert.Contains(t, out, "Skipped: no_timestamp_separator=1")
	assert.Contains(t, out, "Most talkative:  Bob (2)")
	assert.Contains(t, out, "Least talkative: Alice (1)")
	assert.Contains(t, out, "Busiest day:     Friday (3)")
	assert.Contains(t, out, "Busiest hour:    10:00 (3)")
	assert.Contains(t, out, "Messages by hour")

	var bobRow string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "Bob ") {
			bobRow = l
		}
	}
	require.NotEmpty(t, bobRow)
	fields := strings.Fields(bobRow)
	assert.Equal(t, []string{"Bob", "2", "1"}, fields[:3])
	assert.Equal(t, "1", fields[len(fields)-1])
}

func TestReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, buildReport(), true))
	out := buf.String()
	assert.Contains(t, out, "unknown")
	assert.NotContains(t, out, "Messages by hour")
	assert.NotContains(t, out, "SENDER")
}

func TestWriteAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, Analysis{Text: "love it 😍", Score: 0.8, Sentiment: classify.Positive, Flirt: classify.Flirty}, false))
	assert.Equal(t, "Message:   love it 😍\nSentiment: Positive (0.8000)\nFlirt:     Flirt\n", buf.String())
}

func TestRenderConversation(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "wca.db"))
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "chat.txt")
	var body strings.Builder
	for i := 0; i < 9; i++ {
		body.WriteString("12/05/23, 10:0" + string(rune('0'+i)) + " - Alice: pizza number " + string(rune('a'+i)) + "\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(body.String()), 0o644))
	_, err = index.IndexAll(context.Background(), db, dir, index.Options{
		Load: chat.LoadOptions{Options: chat.Options{Parse: parse.Options{DayFirst: true}}},
	})
	require.NoError(t, err)

	out, hit, err := RenderConversation(db, path, Options{Line: 5, Context: 2, Query: "pizza"})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Greater(t, hit, 0)
	assert.Equal(t, ">> Alice > 2023-05-12 10h L5 <<", lines[hit])
	assert.Contains(t, out, "... (2 messages before) ...")
	assert.Contains(t, out, "... (2 messages after) ...")
	assert.Contains(t, out, "  pizza number e")
	assert.NotContains(t, out, "pizza number a")

	colored, _, err := RenderConversation(db, path, Options{Line: 5, Context: 1, Query: "pizza", Color: true})
	require.NoError(t, err)
	assert.Contains(t, colored, colorBoldRed+"pizza"+colorReset)

	_, _, err = RenderConversation(db, filepath.Join(dir, "other.txt"), Options{})
	assert.ErrorIs(t, err, index.ErrNotIndexed)
}
