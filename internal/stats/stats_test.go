package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
)

func build(text ...string) *chat.Table {
	lines := make([]scan.Line, len(text))
	for i, s := range text {
		lines[i] = scan.Line{Number: i + 1, Text: s}
	}
	return chat.Build(lines, chat.Options{Parse: parse.Options{DayFirst: true}})
}

// 12/05/23 is a Friday.
func scenario() *chat.Table {
	return build(
		"12/05/23, 10:30 AM - Alice: Hello there",
		"12/05/23, 10:31 AM - Bob: Hi Alice 😍",
		"12/05/23, Alice added Bob",
	)
}

func TestScenario(t *testing.T) {
	tbl := scenario()
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, UserStats{Sender: "Alice", TotalMessages: 1, MediaCount: 0}, TotalAndMedia(tbl, "Alice"))

	flirt := FlirtCounts(tbl, classify.NewMarkerFlirter(nil))
	assert.Equal(t, []FlirtRow{
		{Sender: "Alice", Flirt: 0, Normal: 1},
		{Sender: "Bob", Flirt: 1, Normal: 0},
	}, flirt)
}

func TestTotalAndMediaCountsMediaInTotal(t *testing.T) {
	tbl := build(
		"12/05/23, 10:00 - Alice: look",
		"12/05/23, 10:01 - Alice: <Media omitted>",
		"12/05/23, 10:02 - Bob: <Media omitted>",
	)
	assert.Equal(t, UserStats{Sender: "Alice", TotalMessages: 2, MediaCount: 1}, TotalAndMedia(tbl, "Alice"))
	assert.Equal(t, UserStats{Sender: "Nobody"}, TotalAndMedia(tbl, "Nobody"))
}

func TestTalkativeRankingTieGoesToEarliest(t *testing.T) {
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines,
			fmt.Sprintf("12/05/23, 10:%02d - A: a%d", i, i),
			fmt.Sprintf("12/05/23, 11:%02d - B: b%d", i, i),
		)
	}
	rk := TalkativeRanking(build(lines...))
	assert.True(t, rk.Known)
	assert.Equal(t, "A", rk.Most)
	assert.Equal(t, 5, rk.MostCount)
	assert.Equal(t, "A", rk.Least)

	// B now leads in message order; still a 5/5 tie.
	rk = TalkativeRanking(build(append([]string{"12/05/23, 09:00 - B: first"}, lines[:len(lines)-1]...)...))
	assert.Equal(t, "B", rk.Most)
}

func TestTalkativeRankingDistinct(t *testing.T) {
	rk := TalkativeRanking(build(
		"12/05/23, 10:00 - Carol: 1",
		"12/05/23, 10:01 - Dan: 1",
		"12/05/23, 10:02 - Dan: 2",
		"12/05/23, 10:03 - Erin: 1",
		"12/05/23, 10:04 - Dan: 3",
	))
	assert.Equal(t, Ranking{Most: "Dan", MostCount: 3, Least: "Carol", LeastCount: 1, Known: true}, rk)
}

func TestActivityProfile(t *testing.T) {
	a := ActivityProfile(build(
		"12/05/23, 10:00 - A: fri",
		"13/05/23, 22:00 - A: sat",
		"13/05/23, 22:10 - B: sat",
		"12/05/23, 10:20 - B: fri",
		"someday, later - B: unknown time",
	))
	require.True(t, a.DayKnown)
	require.True(t, a.HourKnown)
	assert.Equal(t, time.Friday, a.BusiestDay)
	assert.Equal(t, 2, a.DayCount())
	assert.Equal(t, 10, a.BusiestHour)
	assert.Equal(t, 2, a.HourCount())
	assert.Equal(t, 2, a.ByWeekday[time.Saturday])
	assert.Equal(t, 2, a.ByHour[22])

	sum := 0
	for _, n := range a.ByHour {
		sum += n
	}
	assert.Equal(t, 4, sum)
}

func TestActivityProfileAllUnknown(t *testing.T) {
	a := ActivityProfile(build("whenever - A: hi", "?? - B: yo"))
	assert.False(t, a.DayKnown)
	assert.False(t, a.HourKnown)
	assert.Zero(t, a.DayCount())
	assert.Zero(t, a.HourCount())
}

func TestSentimentCrossTabIsDense(t *testing.T) {
	tbl := build(
		"12/05/23, 10:00 - A: good",
		"12/05/23, 10:01 - B: bad",
		"12/05/23, 10:02 - C: ok",
		"12/05/23, 10:03 - A: good",
		"12/05/23, 10:04 - A: ???",
	)
	fn := classify.SentimentFunc(func(text string) classify.Sentiment {
		switch text {
		case "good":
			return classify.Positive
		case "bad":
			return classify.Negative
		case "???":
			return "weird"
		}
		return classify.Neutral
	})

	ct := SentimentCrossTab(tbl, fn)
	assert.Equal(t, 9, ct.Cells())
	assert.Equal(t, tbl.Len(), ct.Total())
	assert.Equal(t, 2, ct.Get("A", classify.Positive))
	assert.Equal(t, 1, ct.Get("A", classify.Neutral))
	assert.Equal(t, 0, ct.Get("A", classify.Negative))
	assert.Equal(t, 1, ct.Get("B", classify.Negative))
	assert.Equal(t, 0, ct.Get("Z", classify.Positive))
	assert.Equal(t, []string{"A", "B", "C"}, []string{ct.Rows[0].Sender, ct.Rows[1].Sender, ct.Rows[2].Sender})
	for _, r := range ct.Rows {
		for _, c := range r.Counts {
			assert.GreaterOrEqual(t, c, 0)
		}
	}
}

func TestSentimentCrossTabUsesStoredLabels(t *testing.T) {
	tbl := build("12/05/23, 10:00 - A: great", "12/05/23, 10:01 - A: x")
	labelled := tbl.WithSentiment(classify.SentimentFunc(func(text string) classify.Sentiment {
		if text == "great" {
			return classify.Positive
		}
		return classify.Negative
	}))
	ct := SentimentCrossTab(labelled, nil)
	assert.Equal(t, [3]int{1, 1, 0}, ct.Rows[0].Counts)

	// unlabelled records count as Neutral
	assert.Equal(t, [3]int{0, 0, 2}, SentimentCrossTab(tbl, nil).Rows[0].Counts)
}

func TestEmptyTable(t *testing.T) {
	tbl := build()
	assert.Equal(t, UserStats{Sender: "Alice"}, TotalAndMedia(tbl, "Alice"))
	assert.Equal(t, Ranking{}, TalkativeRanking(tbl))
	a := ActivityProfile(tbl)
	assert.False(t, a.DayKnown)
	assert.False(t, a.HourKnown)
	ct := SentimentCrossTab(tbl, classify.NewLexicon(nil, -1))
	assert.Zero(t, ct.Cells())
	assert.Zero(t, ct.Total())
	assert.Empty(t, FlirtCounts(tbl, classify.NewMarkerFlirter(nil)))

	r := BuildReport(tbl, ReportOptions{})
	assert.Zero(t, r.Records)
	assert.Empty(t, r.Activity.BusiestDay)
	assert.Nil(t, r.Activity.BusiestHour)
}

func TestBuildReportForUser(t *testing.T) {
	tbl := build(
		"12/05/23, 10:30 AM - Alice: Hello there",
		"12/05/23, 10:31 AM - Bob: Hi Alice 😍",
		"12/05/23, 10:32 AM - Bob: <Media omitted>",
	)
	r := BuildReport(tbl, ReportOptions{User: "Bob", Sentimenter: classify.NewLexicon(nil, -1)})

	require.Len(t, r.Users, 1)
	assert.Equal(t, UserStats{Sender: "Bob", TotalMessages: 2, MediaCount: 1}, r.Users[0])
	assert.Equal(t, "Bob", r.Ranking.Most)
	assert.Equal(t, "Alice", r.Ranking.Least)
	assert.Equal(t, "Friday", r.Activity.BusiestDay)
	require.NotNil(t, r.Activity.BusiestHour)
	assert.Equal(t, 10, *r.Activity.BusiestHour)
	require.Len(t, r.Flirt, 1)
	assert.Equal(t, 1, r.Flirt[0].Flirt)
	require.Len(t, r.Sentiment, 1)
	assert.Equal(t, 2, r.Sentiment[0].Positive+r.Sentiment[0].Negative+r.Sentiment[0].Neutral)
}

func TestReportWrite(t *testing.T) {
	r := BuildReport(scenario(), ReportOptions{Transcript: "chat.txt"})

	var js bytes.Buffer
	require.NoError(t, r.Write(&js, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "chat.txt", decoded["transcript"])
	assert.EqualValues(t, 2, decoded["records"])

	var ym bytes.Buffer
	require.NoError(t, r.Write(&ym, "yaml"))
	var back Report
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, r.Users, back.Users)
	assert.Equal(t, r.Ranking, back.Ranking)
	assert.True(t, strings.Contains(ym.String(), "busiest_day: Friday"))

	assert.Error(t, r.Write(&bytes.Buffer{}, "xml"))
}
